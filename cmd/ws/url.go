package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/whitespace/internal/clipboard"
	"github.com/matsen/whitespace/internal/patent"
)

// clipboardUnavailableMsg is the standard warning when clipboard is not available.
const clipboardUnavailableMsg = "clipboard unavailable (install wl-clipboard, xclip or xsel on Linux)"

var urlCopyFlag bool

func init() {
	urlCmd.Flags().BoolVar(&urlCopyFlag, "copy", false, "Copy URL to system clipboard")
	rootCmd.AddCommand(urlCmd)
}

var urlCmd = &cobra.Command{
	Use:   "url <filing-id>",
	Short: "Get the patent lookup URL for a filing",
	Long: `Get the external lookup URL for a filing id.

Separators are stripped and publication numbers with a short serial are
zero-padded to the form the lookup site expects.

Examples:
  ws url US2021123456A1           # https://patents.google.com/patent/US20210123456A1/en
  ws url "US 2021/0123456 A1" --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

// URLResult is the JSON output for ws url.
type URLResult struct {
	ID        string `json:"id"`
	Canonical string `json:"canonical"`
	URL       string `json:"url"`
	Copied    bool   `json:"copied"` // true if --copy succeeded
}

func runURL(cmd *cobra.Command, args []string) error {
	id := args[0]
	url := patent.URL(id)

	copied := false
	var clipboardWarning string
	if urlCopyFlag {
		if err := clipboard.Copy(url); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				clipboardWarning = clipboardUnavailableMsg
			} else {
				clipboardWarning = fmt.Sprintf("clipboard error: %v", err)
			}
		} else {
			copied = true
		}
	}

	if humanOutput {
		fmt.Println(url)
		if copied {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		} else if clipboardWarning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", clipboardWarning)
		}
		return nil
	}
	return outputJSON(URLResult{
		ID:        id,
		Canonical: patent.Canonical(id),
		URL:       url,
		Copied:    copied,
	})
}
