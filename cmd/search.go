package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vaultsearch/internal/codefiles"
	"vaultsearch/internal/report"
	"vaultsearch/internal/search"
	"vaultsearch/internal/vault"
)

var (
	flagRegex         bool
	flagCaseSensitive bool
	flagNoTitles      bool
	flagNoMessages    bool
	flagTitleContains string
	flagOnlyWithCode  bool
	flagStartDate     string
	flagEndDate       string
	flagPreview       int
	flagShow          int
	flagExport        string
	flagFormat        string
	flagExtractCode   bool
	flagCodeDir       string
)

var searchCmd = &cobra.Command{
	Use:   "search <input> <query>",
	Short: "Search conversation titles and messages for a query",
	Long: `Search a ChatGPT data export for a query.

The input may be an export ZIP, an extracted export folder, or a direct
path to conversations.json. Queries are literal text by default; pass
--regex to treat the query as a regular expression.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	input, queryStr := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// A bad pattern fails here, before anything is loaded or scanned.
	query, err := search.Compile(queryStr, flagRegex, flagCaseSensitive)
	if err != nil {
		return err
	}
	opts := search.Options{
		Query:          query,
		SearchTitles:   !flagNoTitles,
		SearchMessages: !flagNoMessages,
		OnlyWithCode:   flagOnlyWithCode,
		Start:          search.ParseDate(flagStartDate),
		End:            search.ParseDate(flagEndDate),
		SnippetLen:     cfg.SnippetLength,
	}
	if flagTitleContains != "" {
		filter, err := search.Compile(flagTitleContains, false, false)
		if err != nil {
			return err
		}
		opts.TitleFilter = filter
	}

	conversations, err := vault.Load(input)
	if err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(conversations),
		progressbar.OptionSetDescription("Scanning conversations"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	opts.OnProgress = func(scanned, total int) {
		_ = bar.Set(scanned)
	}

	hits := search.Search(conversations, opts)
	search.SortHits(hits)
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	fmt.Printf("\nFound %d match(es).\n\n", len(hits))

	previewN := flagPreview
	if previewN <= 0 {
		previewN = cfg.PreviewCount
	}
	if previewN > len(hits) {
		previewN = len(hits)
	}
	for i := 0; i < previewN; i++ {
		h := hits[i]
		when := h.MessageTime
		if when == "" {
			when = h.ConversationCreateTime
		}
		if when == "" {
			when = "unknown-time"
		}
		role := h.AuthorRole
		if role == "" {
			role = "unknown-role"
		}
		fmt.Printf("[%d] %s  (%s, %s)\n", i+1, h.ConversationTitle, when, role)
		fmt.Printf("     conv_id=%s msg_id=%s\n", h.ConversationID, h.MessageID)
		fmt.Printf("     %s\n\n", h.Snippet)
	}

	if flagExport != "" {
		formatName := flagFormat
		if formatName == "" {
			formatName = cfg.ExportFormat
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if err := report.WriteFile(hits, flagExport, format); err != nil {
			return err
		}
		fmt.Printf("Exported results to: %s\n", flagExport)
	}

	if flagExtractCode {
		codeDir := flagCodeDir
		if codeDir == "" {
			codeDir = cfg.CodeDir
		}
		n, err := codefiles.Extract(hits, codeDir)
		if err != nil {
			return err
		}
		fmt.Printf("Extracted %d code block file(s) into: %s\n", n, codeDir)
	}

	if flagShow > 0 && flagShow <= len(hits) {
		h := hits[flagShow-1]
		divider := "================================================================================"
		fmt.Printf("\n%s\n", divider)
		fmt.Printf("FULL MESSAGE [%d] - %s\n", flagShow, h.ConversationTitle)
		fmt.Printf("%s\n\n", divider)
		fmt.Println(h.FullText)
		fmt.Printf("\n%s\n", divider)
	}

	return nil
}

func init() {
	searchCmd.Flags().BoolVar(&flagRegex, "regex", false, "treat query as a regular expression")
	searchCmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", false, "case-sensitive matching")
	searchCmd.Flags().BoolVar(&flagNoTitles, "no-titles", false, "do not search conversation titles")
	searchCmd.Flags().BoolVar(&flagNoMessages, "no-messages", false, "do not search message bodies")
	searchCmd.Flags().StringVar(&flagTitleContains, "title-contains", "", "only scan conversations whose title contains this text")
	searchCmd.Flags().BoolVar(&flagOnlyWithCode, "only-with-code", false, "only return hits containing fenced code blocks")
	searchCmd.Flags().StringVar(&flagStartDate, "start-date", "", "include messages after this date (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().StringVar(&flagEndDate, "end-date", "", "include messages before this date (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().IntVar(&flagPreview, "preview", 0, "number of hits to preview (default from config)")
	searchCmd.Flags().IntVar(&flagShow, "show", 0, "print the full text of hit N")
	searchCmd.Flags().StringVar(&flagExport, "export", "", "export hits to a file")
	searchCmd.Flags().StringVar(&flagFormat, "format", "", "export format: md, json, or txt (default from config)")
	searchCmd.Flags().BoolVar(&flagExtractCode, "extract-code", false, "extract fenced code blocks into files")
	searchCmd.Flags().StringVar(&flagCodeDir, "code-dir", "", "directory for extracted code (default from config)")
	rootCmd.AddCommand(searchCmd)
}
