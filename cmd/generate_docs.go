package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/jjwjr94/google-drive-mcp/internal/tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The documentation is built from the registered tool definitions, so it
always matches what tools/list returns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(stdout io.Writer, outputFile string) error {
	registered := tools.Default().Tools()
	definitions := make([]mcp.Tool, 0, len(registered))
	for _, t := range registered {
		definitions = append(definitions, t.Definition)
	}

	markdown := generateToolsMarkdown(definitions)

	if outputFile == "" {
		_, err := io.WriteString(stdout, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

// generateToolsMarkdown renders the tools grouped by category. Categories
// and tools keep registration order.
func generateToolsMarkdown(defs []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document lists every tool served by gdrive-mcp over `tools/list`, `POST /mcp` and `POST /tools/{name}`.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	categories, byCategory := groupToolsByCategory(defs)

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Authentication\n\n")
	sb.WriteString("Every tool call needs a Google access token. It is taken, in order, from:\n\n")
	sb.WriteString("1. `params.accessToken` of the `tools/call` request (used for that call only)\n")
	sb.WriteString("2. the token last stored with `POST /set-token` or the `x-access-token` header\n")
	sb.WriteString("3. `GOOGLE_DRIVE_ACCESS_TOKEN`\n\n")

	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range byCategory[category] {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(defs []mcp.Tool) ([]string, map[string][]mcp.Tool) {
	var order []string
	byCategory := make(map[string][]mcp.Tool)

	for _, tool := range defs {
		category := getCategoryFromToolName(tool.Name)
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = append(byCategory[category], tool)
	}

	return order, byCategory
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "gdrive":
		return "Google Drive Tools"
	case "gsheets":
		return "Google Sheets Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if hints := annotationHints(tool.Annotations); hints != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", hints)
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]interface{})
			if !ok {
				continue
			}

			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				fmt.Fprintf(&sb, "%s parameter", getPropertyType(propMap))
			}
			if enum, ok := propMap["enum"].([]string); ok && len(enum) > 0 {
				fmt.Fprintf(&sb, " One of: `%s`.", strings.Join(enum, "`, `"))
			}
			if def, ok := propMap["default"]; ok {
				fmt.Fprintf(&sb, " Default: `%v`.", def)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func annotationHints(a mcp.ToolAnnotation) string {
	switch {
	case a.ReadOnlyHint != nil && *a.ReadOnlyHint:
		return "read-only"
	case a.DestructiveHint != nil && *a.DestructiveHint:
		return "destructive"
	}
	return ""
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
