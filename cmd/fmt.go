package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// printMarkdown renders a markdown report for the terminal. When stdout
// is not a terminal the raw markdown is printed instead, so output stays
// pipeable.
func printMarkdown(doc string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(doc)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Print(doc)
		return
	}
	fmt.Print(out)
}
