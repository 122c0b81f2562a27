package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mycobot/internal/panels"
)

var (
	panelFields []string
	panelAudio  string
	panelPhoto  string
	panelOut    string
)

// askCmd sends one question through the dispatcher
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask MycoBot a question",
	Long: `Sends the question to the remote model. When the model cannot be reached
the offline FAQ is consulted and the answer is prefixed with "(offline)".

Example:
  mycobot ask "How often should I mist oyster mushrooms?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List the available panels and their fields",
	RunE:  listPanels,
}

// panelCmd runs one panel with field values from flags
var panelCmd = &cobra.Command{
	Use:   "panel [name]",
	Short: "Run a panel such as substrate, yield, tracker or journal",
	Long: `Runs a single panel. Field values are passed as key=value pairs;
select fields must use one of the listed options, dates use YYYY-MM-DD.

Examples:
  mycobot panel substrate -f species=Oyster -f setup=Indoor -f city=Pune
  mycobot panel tracker -f task="Soaked straw overnight"
  mycobot panel chat --audio question.ogg
  mycobot panel export -o farm_log.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPanel,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(args, " "))
	res := a.Dispatcher.Dispatch(cmd.Context(), question)
	logger.Debug("ask",
		zap.String("dispatch_id", res.ID),
		zap.String("outcome", string(res.Outcome)),
		zap.String("reason", string(res.Reason)),
		zap.String("model", res.Model))
	fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
	return nil
}

func listPanels(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range a.Panels.Panels() {
		fmt.Fprintf(out, "%-12s %s\n", p.Name, p.Title)
		if u := p.Usage(); u != "" {
			fmt.Fprintf(out, "%-12s   %s\n", "", u)
		}
	}
	return nil
}

func runPanel(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	in := panels.Input{Values: panels.ParseArgs(panelFields, "")}
	if panelAudio != "" {
		if in.Audio, err = os.ReadFile(panelAudio); err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
	}
	if panelPhoto != "" {
		if in.Photo, err = os.ReadFile(panelPhoto); err != nil {
			return fmt.Errorf("read photo: %w", err)
		}
	}
	return printPanel(cmd, a.Panels, args[0], in)
}

func printPanel(cmd *cobra.Command, c *panels.Catalog, name string, in panels.Input) error {
	out, err := c.Run(cmd.Context(), name, in)
	w := cmd.OutOrStdout()
	if out.Notice != "" {
		fmt.Fprintln(w, out.Notice)
	}
	var inputErr *panels.InputError
	if errors.As(err, &inputErr) {
		fmt.Fprintln(w, "⚠️ "+inputErr.Message)
		return nil
	}
	if err != nil {
		return err
	}

	if out.CSV == "" {
		fmt.Fprintln(w, out.Text)
		return nil
	}
	if panelOut == "" {
		fmt.Fprint(w, out.CSV)
		return nil
	}
	if dir := filepath.Dir(panelOut); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(panelOut, []byte(out.CSV), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Fprintf(w, "Saved %d rows to %s\n", len(out.Rows), panelOut)
	return nil
}
