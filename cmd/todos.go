package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/taskscan"
)

var todosTag string

// todosCmd represents the todos command
var todosCmd = &cobra.Command{
	Use:   "todos [path]",
	Short: "List TODO and FIXME annotations in source files",
	Long: `Scan the source files under the given directory (default: the
current directory) for TODO, FIXME, NOTE, HACK and XXX annotations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolvePathArg(args)
		if err != nil {
			return err
		}

		annotations, err := taskscan.NewScanner(root).Scan()
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}

		if todosTag != "" {
			tag := strings.ToUpper(todosTag)
			filtered := annotations[:0]
			for _, a := range annotations {
				if a.Tag == tag {
					filtered = append(filtered, a)
				}
			}
			annotations = filtered
		}

		if jsonOutput {
			var entries []map[string]interface{}
			for _, a := range annotations {
				entries = append(entries, map[string]interface{}{
					"file":    a.File,
					"line":    a.Line,
					"tag":     a.Tag,
					"message": a.Message,
				})
			}
			data := map[string]interface{}{
				"annotations": entries,
				"count":       len(entries),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal annotations: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if len(annotations) == 0 {
			fmt.Println("No annotations found.")
			return nil
		}
		for _, a := range annotations {
			fmt.Printf("%s:%d [%s] %s\n", a.File, a.Line, a.Tag, a.Message)
		}

		counts := taskscan.CountByTag(annotations)
		tags := make([]string, 0, len(counts))
		for tag := range counts {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s: %d", tag, counts[tag]))
		}
		fmt.Printf("\n%d annotation(s) (%s)\n", len(annotations), strings.Join(parts, ", "))
		return nil
	},
}

func init() {
	todosCmd.Flags().StringVarP(&todosTag, "tag", "t", "", "Only show annotations with this tag (e.g. TODO)")
}
