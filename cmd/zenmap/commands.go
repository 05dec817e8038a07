package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/jeanpaul/zenmap/internal/app"
	"github.com/jeanpaul/zenmap/internal/export"
	"github.com/jeanpaul/zenmap/internal/health"
	"github.com/jeanpaul/zenmap/internal/importer"
	"github.com/jeanpaul/zenmap/internal/mindmap"
	"github.com/jeanpaul/zenmap/internal/note"
	"github.com/jeanpaul/zenmap/internal/tui"
)

// tagFlag collects repeated -t values.
type tagFlag []string

func (t *tagFlag) String() string { return strings.Join(*t, ",") }

func (t *tagFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

// readText joins args into the note body; a lone "-" reads stdin.
func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

// findSnippet matches a full id or a unique id prefix, as printed by list.
func findSnippet(list []note.Snippet, ref string) (note.Snippet, error) {
	var found []note.Snippet
	for _, s := range list {
		if s.ID == ref {
			return s, nil
		}
		if ref != "" && strings.HasPrefix(s.ID, ref) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 0:
		return note.Snippet{}, fmt.Errorf("%w: %s", app.ErrNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return note.Snippet{}, fmt.Errorf("id %q is ambiguous (%d notes match)", ref, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// summaryLine renders one snippet for list and search output.
func summaryLine(s note.Snippet, width int) string {
	first, _, _ := strings.Cut(strings.TrimSpace(s.Content), "\n")
	runes := []rune(first)
	if len(runes) > width {
		first = string(runes[:width-3]) + "..."
	}
	line := fmt.Sprintf("%s  %s  %s",
		tui.TitleStyle.Render(shortID(s.ID)),
		tui.DimStyle.Render(s.Updated().Format("2006-01-02 15:04")),
		first,
	)
	if len(s.Tags) > 0 {
		line += "  " + tui.InfoStyle.Render("#"+strings.Join(s.Tags, " #"))
	}
	return line
}

func printSnippets(list []note.Snippet) {
	if len(list) == 0 {
		fmt.Println(tui.HelpStyle.Render("  No notes found"))
		return
	}
	for _, s := range list {
		fmt.Println("  " + summaryLine(s, 60))
	}
	fmt.Println()
	fmt.Println(tui.HelpStyle.Render(fmt.Sprintf("  %d note(s)", len(list))))
}

// colorDiff styles added and removed lines of a unified diff.
func colorDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			sb.WriteString(tui.DimStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			sb.WriteString(tui.DiffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			sb.WriteString(tui.DiffDelStyle.Render(line))
		default:
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// saveDraft stores text and tags as a new note through the controller.
func saveDraft(e *env, content string, tags []string) (note.Snippet, error) {
	e.ctrl.ResetEditor()
	e.ctrl.Content = content
	for _, t := range tags {
		e.ctrl.Tags.Add(t)
	}
	return e.ctrl.SaveSnippet()
}

func cmdAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	var tags tagFlag
	fs.Var(&tags, "t", "Tag, repeatable or comma separated")
	_ = fs.Parse(args)

	text, err := readText(fs.Args(), os.Stdin)
	if err != nil {
		fatal("%s", err)
	}

	e := openEnv(false)
	defer e.Close()
	sn, err := saveDraft(e, text, tags)
	if err != nil {
		e.fail("%s", err)
	}
	fmt.Println(tui.TitleStyle.Render("  ✓ Saved ") + shortID(sn.ID))
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	tag := fs.String("t", "", "Only notes with this tag")
	_ = fs.Parse(args)

	e := openEnv(false)
	defer e.Close()
	list := e.ctrl.Snippets
	if *tag != "" {
		var tagged []note.Snippet
		for _, s := range list {
			for _, t := range s.Tags {
				if strings.EqualFold(t, *tag) {
					tagged = append(tagged, s)
					break
				}
			}
		}
		list = tagged
	}
	printSnippets(list)
}

func cmdSearch(term string) {
	e := openEnv(false)
	defer e.Close()
	printSnippets(app.FilterSnippets(e.ctrl.Snippets, term))
}

func cmdShow(ref string) {
	e := openEnv(false)
	defer e.Close()
	sn, err := findSnippet(e.ctrl.Snippets, ref)
	if err != nil {
		e.fail("%s", err)
	}
	fmt.Println(tui.TitleStyle.Render(sn.ID))
	fmt.Println(tui.DimStyle.Render(fmt.Sprintf("created %s  updated %s",
		sn.Created().Format("2006-01-02 15:04"), sn.Updated().Format("2006-01-02 15:04"))))
	if len(sn.Tags) > 0 {
		fmt.Println(tui.InfoStyle.Render("#" + strings.Join(sn.Tags, " #")))
	}
	fmt.Println()
	fmt.Println(sn.Content)
}

func cmdEdit(args []string) {
	if len(args) == 0 {
		fatal("usage: zenmap edit <id> [-t tag]... <text|->")
	}
	ref := args[0]
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	var tags tagFlag
	fs.Var(&tags, "t", "Replacement tag, repeatable")
	_ = fs.Parse(args[1:])

	text, err := readText(fs.Args(), os.Stdin)
	if err != nil {
		fatal("%s", err)
	}

	e := openEnv(false)
	defer e.Close()
	sn, err := findSnippet(e.ctrl.Snippets, ref)
	if err != nil {
		e.fail("%s", err)
	}
	if err := e.ctrl.StartEdit(sn.ID); err != nil {
		e.fail("%s", err)
	}
	if text != "" {
		e.ctrl.Content = text
	}
	if len(tags) > 0 {
		e.ctrl.Tags.Reset()
		for _, t := range tags {
			e.ctrl.Tags.Add(t)
		}
	}
	updated, err := e.ctrl.SaveSnippet()
	if err != nil {
		e.fail("%s", err)
	}

	if d := app.Diff(sn.Content, updated.Content); d != "" {
		fmt.Print(colorDiff(d))
	}
	fmt.Println(tui.TitleStyle.Render("  ✓ Updated ") + shortID(updated.ID))
}

func cmdDelete(ref string) {
	e := openEnv(false)
	defer e.Close()
	sn, err := findSnippet(e.ctrl.Snippets, ref)
	if err != nil {
		e.fail("%s", err)
	}
	if err := e.ctrl.DeleteSnippet(sn.ID); err != nil {
		e.fail("%s", err)
	}
	fmt.Println(tui.TitleStyle.Render("  ✓ Deleted ") + shortID(sn.ID))
}

func cmdGenerate() {
	e := openEnv(false)
	defer e.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("%s Mapping %d note(s) with %s...\n",
		tui.SpinnerStyle.Render("●"), len(e.ctrl.Snippets), e.settings.Name)
	start := time.Now()
	if err := e.ctrl.GenerateMindMap(ctx); err != nil {
		e.fail("%s", mindmap.UserMessage(err))
	}
	m := e.ctrl.MindMap
	fmt.Printf("%s %s\n\n",
		tui.TitleStyle.Render("  ✓ Done"),
		tui.HelpStyle.Render(fmt.Sprintf("(%d topics, %s)", m.Root.Count(), time.Since(start).Round(time.Millisecond))))
	fmt.Print(tui.Outline(&m.Root, 100))
}

func cmdMap() {
	e := openEnv(false)
	defer e.Close()
	m := e.ctrl.MindMap
	if m == nil {
		fmt.Println(tui.HelpStyle.Render("  No mind map yet. Run 'zenmap generate'."))
		return
	}
	fmt.Println(tui.DimStyle.Render(fmt.Sprintf("Generated %s from %d note(s)",
		m.Created().Format("2006-01-02 15:04"), m.SnippetCount)))
	if m.SnippetCount != len(e.ctrl.Snippets) {
		fmt.Println(tui.ConfirmStyle.Render(fmt.Sprintf("Library now has %d note(s); regenerate to include changes.", len(e.ctrl.Snippets))))
	}
	fmt.Println()
	fmt.Print(tui.Outline(&m.Root, 100))
}

// exportFormat picks the format from -f, else from the output extension.
func exportFormat(format, out string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".xlsx":
			format = "xlsx"
		default:
			format = "markdown"
		}
	}
	for _, f := range export.Formats {
		if f == format {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (must be one of %s)", format, strings.Join(export.Formats, ", "))
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	formatFlag := fs.String("f", "", "Format: markdown, yaml or xlsx")
	outFlag := fs.String("o", "", "Output file (default stdout)")
	_ = fs.Parse(args)

	format, err := exportFormat(*formatFlag, *outFlag)
	if err != nil {
		fatal("%s", err)
	}
	if format == "xlsx" && *outFlag == "" {
		fatal("xlsx export needs an output file (-o notes.xlsx)")
	}

	e := openEnv(false)
	defer e.Close()
	m := e.ctrl.MindMap
	if m == nil && format != "xlsx" {
		e.fail("no mind map yet, run 'zenmap generate' first")
	}

	var w io.Writer = os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			e.fail("%s", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "markdown":
		err = export.Markdown(w, *m)
	case "yaml":
		err = export.YAML(w, *m)
	case "xlsx":
		err = export.Workbook(w, e.ctrl.Snippets, m)
	}
	if err != nil {
		e.fail("export: %s", err)
	}
	if *outFlag != "" {
		fmt.Println(tui.TitleStyle.Render("  ✓ Wrote ") + *outFlag)
	}
}

// expandImportArgs turns glob patterns into file lists and keeps plain
// paths as given.
func expandImportArgs(args []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		if !strings.ContainsAny(a, "*?[{") {
			paths = append(paths, a)
			continue
		}
		matches, err := importer.Glob(a)
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func cmdImport(args []string) {
	paths, err := expandImportArgs(args)
	if err != nil {
		fatal("%s", err)
	}
	if len(paths) == 0 {
		fatal("no importable files matched")
	}

	e := openEnv(false)
	defer e.Close()
	var saved, failed int
	for _, p := range paths {
		d, err := importer.FromFile(p)
		if err == nil {
			_, err = saveDraft(e, d.Content, d.Tags)
		}
		if err != nil {
			failed++
			fmt.Printf("  %s %s\n", tui.ErrorStyle.Render("✗"), tui.HelpStyle.Render(err.Error()))
			continue
		}
		saved++
		fmt.Printf("  %s %s\n", tui.TitleStyle.Render("✓"), p)
	}
	fmt.Println()
	fmt.Println(tui.HelpStyle.Render(fmt.Sprintf("  %d imported, %d failed", saved, failed)))
	if saved == 0 {
		e.Close()
		os.Exit(1)
	}
}

func cmdClip(rawURL string) {
	ctx, cancel := signalContext()
	defer cancel()

	e := openEnv(false)
	defer e.Close()
	fmt.Printf("%s Fetching %s...\n", tui.SpinnerStyle.Render("●"), rawURL)
	d, err := importer.NewClipper().Clip(ctx, rawURL)
	if err != nil {
		e.fail("%s", err)
	}
	sn, err := saveDraft(e, d.Content, d.Tags)
	if err != nil {
		e.fail("%s", err)
	}
	title := d.Title
	if title == "" {
		title = rawURL
	}
	fmt.Println(tui.TitleStyle.Render("  ✓ Clipped ") + title + tui.HelpStyle.Render(" ("+shortID(sn.ID)+")"))
}

// confirm asks a yes/no question on stdin; anything but y or yes is no.
func confirm(r io.Reader, question string) bool {
	fmt.Print(tui.ConfirmStyle.Render(question) + " [y/N] ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func cmdReset(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	_ = fs.Parse(args)

	e := openEnv(false)
	defer e.Close()
	if !*yes && !confirm(os.Stdin, fmt.Sprintf("Delete %d note(s) and the mind map?", len(e.ctrl.Snippets))) {
		fmt.Println(tui.HelpStyle.Render("  Kept everything"))
		return
	}
	if err := e.ctrl.ClearAll(); err != nil {
		e.fail("%s", err)
	}
	fmt.Println(tui.TitleStyle.Render("  ✓ All data cleared"))
}

func cmdDoctor() {
	e := openEnv(false)
	defer e.Close()
	cfg := e.cfg

	fmt.Println(tui.TitleStyle.Render("  zenmap health check"))
	fmt.Println()

	fmt.Printf("  %s %s ... ", tui.InfoStyle.Render("●"), "config")
	if cfg.Source != "" {
		fmt.Println(tui.TitleStyle.Render("✓ " + cfg.Source))
	} else {
		fmt.Println(tui.HelpStyle.Render("- Using defaults (create " + filepath.Join(cfg.DataDir, "config.yaml") + " to customize)"))
	}

	opts := cfg.StoreOptions()
	fmt.Printf("  %s %s ... ", tui.InfoStyle.Render("●"), "store")
	fmt.Printf("%s %s\n",
		tui.TitleStyle.Render("✓ "+opts.Backend),
		tui.HelpStyle.Render(fmt.Sprintf("%s (%d notes)", opts.Path, len(e.ctrl.Snippets))))

	defaultOK := true
	for _, name := range slices.Sorted(maps.Keys(cfg.Generator.Providers)) {
		s, err := cfg.ProviderSettings(name)
		if err != nil {
			continue
		}
		isDefault := name == e.settings.Name
		label := name
		if isDefault {
			s = e.settings
			label = name + " (default)"
		}
		fmt.Printf("  %s %s ... ", tui.InfoStyle.Render("●"), label)

		st := health.Check(context.Background(), s)
		switch {
		case st.OK() && isDefault:
			if err := health.CheckModel(context.Background(), s); err != nil {
				defaultOK = false
				fmt.Println(tui.ErrorStyle.Render("✗ " + err.Error()))
				continue
			}
			fallthrough
		case st.OK():
			models := ""
			if len(st.Models) > 0 {
				models = fmt.Sprintf(" (%d models)", len(st.Models))
			}
			fmt.Printf("%s%s %s\n",
				tui.TitleStyle.Render("✓ OK"),
				tui.HelpStyle.Render(models),
				tui.HelpStyle.Render(st.Latency.Round(time.Millisecond).String()))
		case isDefault:
			defaultOK = false
			fmt.Println(tui.ErrorStyle.Render("✗ " + st.Error))
		default:
			fmt.Println(tui.HelpStyle.Render("- " + st.Error + " (optional)"))
		}
	}

	fmt.Println()
	if defaultOK {
		fmt.Println(tui.TitleStyle.Render("  Ready to generate mind maps."))
	} else {
		fmt.Println(tui.ErrorStyle.Render("  The default provider cannot generate mind maps."))
		fmt.Println(tui.HelpStyle.Render("  Set GEMINI_API_KEY, or pick another provider with --provider."))
	}

	if redacted, err := cfg.Redacted(); err == nil {
		fmt.Println()
		fmt.Println(tui.HelpStyle.Render("  Effective config:"))
		for _, line := range strings.Split(strings.TrimRight(redacted, "\n"), "\n") {
			fmt.Println(tui.DimStyle.Render("    " + line))
		}
	}
}
