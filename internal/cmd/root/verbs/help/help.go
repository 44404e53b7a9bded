package help

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/kong/gridctl/internal/cmd"
	"github.com/kong/gridctl/internal/cmd/root/verbs"
	"github.com/kong/gridctl/internal/iostreams"
	"github.com/kong/gridctl/internal/meta"
	"github.com/kong/gridctl/internal/render"
	"github.com/kong/gridctl/internal/util/i18n"
	"github.com/kong/gridctl/internal/util/normalizers"
)

//go:embed templates/*.md
var helpTemplates embed.FS

var (
	helpUse = verbs.Help.String()

	helpShort = i18n.T("root.verbs.help.helpShort", "Display extended help for a command or topic")

	helpLong = normalizers.LongDesc(i18n.T("root.verbs.help.helpLong",
		`Display extended help documentation for a command or topic.

This provides more detailed information than the standard --help flag, including
worked examples, the grid spec file format, the filter and sort syntax, and the
configuration keys. Without an argument the available topics are listed.`))

	helpExamples = normalizers.Examples(i18n.T("root.verbs.help.helpExamples",
		fmt.Sprintf(`
  # List the help topics
  %[1]s help

  # Show extended help for the browse command
  %[1]s help browse

  # Describe the grid spec file format
  %[1]s help grid-spec`, meta.CLIName)))
)

// NewHelpCmd creates a new help command
func NewHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:     helpUse + " [command|topic]",
		Short:   helpShort,
		Long:    helpLong,
		Example: helpExamples,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runHelp,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return Topics(), cobra.ShellCompDirectiveNoFileComp
		},
	}
}

// Topics lists the names accepted by the help command.
func Topics() []string {
	entries, err := fs.ReadDir(helpTemplates, "templates")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(out)
	return out
}

func runHelp(c *cobra.Command, args []string) error {
	helper := cmdpkg.BuildHelper(c, args)
	streams := helper.GetStreams()

	if len(args) == 0 {
		fmt.Fprintln(streams.Out, "Help topics:")
		for _, topic := range Topics() {
			fmt.Fprintf(streams.Out, "  %s\n", topic)
		}
		return nil
	}

	topic := args[0]
	content, err := loadHelpTemplate(topic)
	if err != nil {
		// without extended help, fall back to the command's own help
		target, _, findErr := c.Root().Find([]string{topic})
		if findErr != nil || target == c.Root() {
			return &cmdpkg.ConfigurationError{Err: fmt.Errorf("unknown help topic %q, expected one of %s",
				topic, strings.Join(Topics(), ", "))}
		}
		return target.Help()
	}

	terminal := streams.IsOutputTerminal()
	rendered := render.Markdown(content, render.Options{
		NoColor: !terminal,
		Width:   min(streams.TerminalWidth(100), 100),
	})
	if !terminal {
		_, err := fmt.Fprint(streams.Out, rendered)
		return err
	}
	if err := displayWithPager(rendered, streams); err != nil {
		_, err = fmt.Fprint(streams.Out, rendered)
		return err
	}
	return nil
}

func loadHelpTemplate(topic string) (string, error) {
	content, err := helpTemplates.ReadFile(fmt.Sprintf("templates/%s.md", topic))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(content), "{{cli}}", meta.CLIName), nil
}

func displayWithPager(content string, streams *iostreams.IOStreams) error {
	pager := os.Getenv("PAGER")
	if pager == "" {
		for _, p := range []string{"less", "more"} {
			if _, err := exec.LookPath(p); err == nil {
				pager = p
				break
			}
		}
	}
	if pager == "" {
		return fmt.Errorf("no pager found")
	}
	if strings.Contains(pager, "less") {
		pager = "less -R"
	}

	var pagerCmd *exec.Cmd
	if runtime.GOOS == "windows" {
		pagerCmd = exec.Command("cmd", "/c", pager)
	} else {
		pagerCmd = exec.Command("sh", "-c", pager)
	}
	pagerCmd.Stdout = streams.Out
	pagerCmd.Stderr = streams.ErrOut

	pipeReader, pipeWriter := io.Pipe()
	pagerCmd.Stdin = pipeReader
	if err := pagerCmd.Start(); err != nil {
		pipeWriter.Close()
		return err
	}
	go func() {
		defer pipeWriter.Close()
		fmt.Fprint(pipeWriter, content)
	}()
	return pagerCmd.Wait()
}
