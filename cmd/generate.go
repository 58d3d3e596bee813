package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/content"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/utils"
	"github.com/spf13/cobra"
)

// maxExtraTokens bounds the free-text notes added to a content prompt.
const maxExtraTokens = 400

var (
	genKind        string
	genTone        string
	genLanguage    string
	genExtra       string
	genPrintPrompt bool
	genOutputPath  string
	genTimeoutSec  int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate guest-facing content with AI",
}

var generateContentCmd = &cobra.Command{
	Use:   "content <property-id>",
	Short: "Write a listing description, welcome message, social post or house rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Properties.Get(args[0])
		if err != nil {
			return err
		}
		extra := genExtra
		if utils.CountTokens(extra) > maxExtraTokens {
			fmt.Fprintf(os.Stderr, "⚠ Warning: --extra truncated to ≈%d tokens\n", maxExtraTokens)
			extra = utils.TruncateToTokenLimit(extra, maxExtraTokens)
		}
		req := content.Request{Kind: genKind, Property: p, Tone: genTone, Language: genLanguage, Extra: extra}

		if genPrintPrompt {
			prompt, err := content.Prompt(req)
			if err != nil {
				return err
			}
			fmt.Println("----- PROMPT BEGIN -----")
			fmt.Println(prompt)
			fmt.Println("----- PROMPT END -----")
			fmt.Printf("(≈%d tokens)\n", utils.CountTokens(prompt))
			return nil
		}

		g := content.NewGenerator(newAssistant())
		if genTimeoutSec > 0 {
			g.Timeout = time.Duration(genTimeoutSec) * time.Second
		}
		res, err := g.Generate(context.Background(), req)
		if err != nil {
			return err
		}
		if res.Warning != "" {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", res.Warning)
		}
		if genOutputPath != "" {
			if err := utils.SafeWriteFile(genOutputPath, []byte(res.Text+"\n")); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %s (%s) to %s\n", res.Kind, res.Source, genOutputPath)
			return nil
		}
		fmt.Println(res.Text)
		if debug {
			fmt.Fprintf(os.Stderr, "debug: source %s\n", res.Source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.AddCommand(generateContentCmd)

	f := generateContentCmd.Flags()
	f.StringVarP(&genKind, "kind", "k", content.ListingDescription, "content kind: "+strings.Join(content.Kinds(), ", "))
	f.StringVar(&genTone, "tone", "", "tone of voice (default warm)")
	f.StringVar(&genLanguage, "language", "", "output language (default English)")
	f.StringVar(&genExtra, "extra", "", "extra notes for the writer")
	f.BoolVar(&genPrintPrompt, "print-prompt", false, "print the prompt and exit without calling AI")
	f.StringVarP(&genOutputPath, "output", "o", "", "write the text to a file")
	f.IntVar(&genTimeoutSec, "timeout", 0, "AI request timeout in seconds")
}
