package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	prompt "github.com/c-bata/go-prompt"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/phenrril/psucalc/internal/client"
	"github.com/phenrril/psucalc/internal/config"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/power"
	"github.com/phenrril/psucalc/internal/validator"
)

// console keeps one selection across commands, with the catalog cached for
// completion and estimation. reload refreshes it.
type console struct {
	api   *client.Client
	out   io.Writer
	valid *validator.Validator

	catalog power.Catalog
	names   map[string][]string
	sel     power.Selection
	margin  int
	last    *power.Result
}

// fields maps console field names to the catalog category they draw from.
var fields = map[string]domain.Category{
	"cpu":         domain.CategoryCPU,
	"gpu":         domain.CategoryGPU,
	"ram":         domain.CategoryRAM,
	"storage":     domain.CategoryStorage,
	"cooling":     domain.CategoryCooling,
	"drive":       domain.CategoryDrive,
	"motherboard": domain.CategoryMotherboard,
}

var topLevel = []prompt.Suggest{
	{Text: "set", Description: "set a component: set <field> <name>"},
	{Text: "add", Description: "add a storage device: add storage <name>"},
	{Text: "clear", Description: "clear a field or everything: clear [field]"},
	{Text: "show", Description: "show the current selection"},
	{Text: "estimate", Description: "compute required wattage and PSUs"},
	{Text: "save", Description: "save the last estimate: save [name]"},
	{Text: "list", Description: "list a catalog category"},
	{Text: "configs", Description: "list saved configurations: configs [query]"},
	{Text: "reload", Description: "fetch the catalog again"},
	{Text: "help", Description: "show commands"},
	{Text: "exit", Description: "leave the console"},
}

func newConsoleCmd(cfg *config.CLI, api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive session with name completion",
		Long: `Interactive session with name completion.

Commands inside the console:
  set cpu|gpu|ram|cooling|drive|motherboard <name>
  set modules <1-4>        set margin <10-50>
  add storage <name>       clear [field]
  show     estimate     save [name]
  list <category>          configs [query]
  reload   help         exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newConsole(api(), cmd.OutOrStdout(), cfg.Estimate.MarginPct)
			if err := c.reload(cmd.Context()); err != nil {
				return fmt.Errorf("catalog unavailable: %w", err)
			}
			return c.run()
		},
	}
}

func newConsole(api *client.Client, out io.Writer, margin int) *console {
	return &console{
		api:   api,
		out:   out,
		valid: validator.New(),
		names:  map[string][]string{},
		sel:    power.Selection{RAMModules: domain.DefaultRAMModules, MarginPct: margin},
		margin: margin,
	}
}

func (c *console) run() error {
	fmt.Fprintln(c.out, "psucalc console. Type 'help' for commands, Tab to complete names.")
	p := prompt.New(
		c.executor,
		c.completer,
		prompt.OptionPrefix("psucalc> "),
		prompt.OptionTitle("psucalc console"),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSelectedSuggestionBGColor(prompt.Blue),
		prompt.OptionSelectedSuggestionTextColor(prompt.White),
	)
	p.Run()
	return nil
}

func (c *console) reload(ctx context.Context) error {
	cat, raw, err := c.api.Catalog(ctx)
	if err != nil {
		return err
	}
	c.setCatalog(cat, raw)
	zlog.Debug().Int("psus", len(cat.PSUs)).Msg("catalog loaded")
	return nil
}

func (c *console) setCatalog(cat power.Catalog, raw map[string][]map[string]any) {
	c.catalog = cat
	c.names = map[string][]string{}
	for field, category := range fields {
		for _, row := range raw[string(category)] {
			if n := power.Stringify(row["name"]); n != "" {
				c.names[field] = append(c.names[field], n)
			}
		}
	}
}

func (c *console) executor(in string) {
	line := strings.TrimSpace(in)
	if line == "" {
		return
	}
	if line == "exit" || line == "quit" {
		fmt.Fprintln(c.out, "bye")
		os.Exit(0)
	}
	if err := c.handle(context.Background(), line); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
}

// handle runs one console line. exit is handled by executor.
func (c *console) handle(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "help":
		for _, s := range topLevel {
			fmt.Fprintf(c.out, "  %-9s %s\n", s.Text, s.Description)
		}
		fmt.Fprintf(c.out, "  fields: %s, modules, margin\n", strings.Join(fieldNames(), ", "))
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: set <field> <value>")
		}
		return c.set(args[0], strings.TrimSpace(strings.TrimPrefix(rest, args[0])))
	case "add":
		if len(args) < 2 || args[0] != "storage" {
			return fmt.Errorf("usage: add storage <name>")
		}
		c.sel.Storage = append(c.sel.Storage, strings.TrimSpace(strings.TrimPrefix(rest, "storage")))
		c.last = nil
	case "clear":
		return c.clear(rest)
	case "show":
		c.show()
	case "estimate":
		return c.estimate()
	case "save":
		return c.save(ctx, rest)
	case "list":
		if len(args) != 1 {
			return fmt.Errorf("usage: list <category>")
		}
		return c.list(args[0])
	case "configs":
		list, err := c.api.Configs(ctx, rest)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(c.out, "No saved configurations.")
		}
		for _, cfg := range list {
			printConfigLine(c.out, cfg)
		}
	case "reload":
		return c.reload(ctx)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (c *console) set(field, value string) error {
	switch field {
	case "cpu":
		c.sel.CPU = value
	case "gpu":
		c.sel.GPU = value
	case "ram":
		c.sel.RAM = value
	case "cooling":
		c.sel.Cooling = value
	case "drive":
		c.sel.Drive = value
	case "motherboard":
		c.sel.Motherboard = value
	case "storage":
		c.sel.Storage = []string{value}
	case "modules":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("modules: %q is not a number", value)
		}
		c.sel.RAMModules = n
	case "margin":
		n, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil {
			return fmt.Errorf("margin: %q is not a number", value)
		}
		c.sel.MarginPct = n
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	c.last = nil
	return nil
}

// clear resets one field to its default, or the whole selection when field is
// empty. modules and margin go back to their configured defaults.
func (c *console) clear(field string) error {
	switch field {
	case "":
		c.sel = power.Selection{RAMModules: domain.DefaultRAMModules, MarginPct: c.sel.MarginPct}
	case "storage":
		c.sel.Storage = nil
	case "modules":
		c.sel.RAMModules = domain.DefaultRAMModules
	case "margin":
		c.sel.MarginPct = c.margin
	default:
		if _, ok := fields[field]; !ok {
			return fmt.Errorf("unknown field %q", field)
		}
		if err := c.set(field, ""); err != nil {
			return err
		}
	}
	c.last = nil
	return nil
}

func (c *console) show() {
	s := c.sel
	fmt.Fprintf(c.out, "  cpu:         %s\n", s.CPU)
	fmt.Fprintf(c.out, "  gpu:         %s\n", s.GPU)
	fmt.Fprintf(c.out, "  ram:         %s x%d\n", s.RAM, s.RAMModules)
	fmt.Fprintf(c.out, "  storage:     %s\n", strings.Join(s.Storage, ", "))
	fmt.Fprintf(c.out, "  cooling:     %s\n", s.Cooling)
	fmt.Fprintf(c.out, "  drive:       %s\n", s.Drive)
	fmt.Fprintf(c.out, "  motherboard: %s\n", s.Motherboard)
	fmt.Fprintf(c.out, "  margin:      %d%%\n", s.MarginPct)
}

// request turns the selection back into boundary input so the same range
// checks apply as for flags and HTTP.
func (c *console) request() domain.EstimateRequest {
	modules, margin := c.sel.RAMModules, c.sel.MarginPct
	return domain.EstimateRequest{
		CPU: c.sel.CPU, GPU: c.sel.GPU, RAM: c.sel.RAM, RAMModules: &modules,
		Storages: c.sel.Storage, Cooling: c.sel.Cooling, Drive: c.sel.Drive,
		Motherboard: c.sel.Motherboard, MarginPct: &margin,
	}
}

func (c *console) estimate() error {
	req := c.request()
	if err := c.valid.Struct(req); err != nil {
		return err
	}
	res := power.Estimate(c.catalog, req.Selection())
	c.last = &res
	printResult(c.out, res)
	return nil
}

func (c *console) save(ctx context.Context, name string) error {
	if c.last == nil {
		return fmt.Errorf("nothing to save, run 'estimate' first")
	}
	saved, err := c.api.SaveConfig(ctx, domain.NewSavedConfig(name, c.request().Selection(), *c.last))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved as %q (%s)\n", saved.Name, saved.ID)
	return nil
}

func (c *console) list(arg string) error {
	cat, ok := domain.ParseCategory(arg)
	if !ok {
		return fmt.Errorf("unknown category %q", arg)
	}
	var recs []power.Record
	switch cat {
	case domain.CategoryCPU:
		recs = c.catalog.CPUs
	case domain.CategoryGPU:
		recs = c.catalog.GPUs
	case domain.CategoryRAM:
		recs = c.catalog.RAM
	case domain.CategoryStorage:
		recs = c.catalog.Storage
	case domain.CategoryCooling:
		recs = c.catalog.Cooling
	case domain.CategoryDrive:
		recs = c.catalog.Drives
	case domain.CategoryMotherboard:
		recs = c.catalog.Motherboards
	case domain.CategoryPSU:
		recs = c.catalog.PSUs
	}
	for _, r := range recs {
		fmt.Fprintf(c.out, "  %-40s %d W\n", r.Name, r.Watts)
	}
	return nil
}

func (c *console) completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	parts := strings.Fields(text)
	trailing := strings.HasSuffix(text, " ")

	if len(parts) == 0 || (len(parts) == 1 && !trailing) {
		return prompt.FilterHasPrefix(topLevel, d.GetWordBeforeCursor(), true)
	}

	switch parts[0] {
	case "set", "clear":
		if len(parts) == 1 || (len(parts) == 2 && !trailing) {
			s := fieldSuggestions()
			if parts[0] == "set" {
				s = append(s, prompt.Suggest{Text: "modules", Description: "RAM modules (1-4)"}, prompt.Suggest{Text: "margin", Description: "safety margin % (10-50)"})
			}
			return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
		}
		if parts[0] == "clear" {
			return nil
		}
		names, ok := c.names[parts[1]]
		if !ok {
			return nil
		}
		return suggestNames(names, argAfter(text, 2))
	case "add":
		if len(parts) == 1 || (len(parts) == 2 && !trailing) {
			return prompt.FilterHasPrefix([]prompt.Suggest{{Text: "storage"}}, d.GetWordBeforeCursor(), true)
		}
		return suggestNames(c.names["storage"], argAfter(text, 2))
	case "list":
		if len(parts) == 1 || (len(parts) == 2 && !trailing) {
			s := make([]prompt.Suggest, len(domain.Categories))
			for i, cat := range domain.Categories {
				s[i] = prompt.Suggest{Text: string(cat)}
			}
			return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
		}
	}
	return nil
}

func fieldNames() []string {
	out := make([]string, 0, len(fields))
	for f := range fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func fieldSuggestions() []prompt.Suggest {
	names := fieldNames()
	s := make([]prompt.Suggest, len(names))
	for i, n := range names {
		s[i] = prompt.Suggest{Text: n}
	}
	return s
}

// argAfter returns the text following the first n words of line, keeping
// inner spaces.
func argAfter(line string, n int) string {
	rest := strings.TrimLeft(line, " ")
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(rest, ' ')
		if idx < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[idx:], " ")
	}
	return rest
}

// suggestNames completes a multi-word catalog name. go-prompt replaces only
// the word before the cursor, so once arg spans several words each suggestion
// carries just the part after the last complete word.
func suggestNames(names []string, arg string) []prompt.Suggest {
	cut := strings.LastIndexByte(arg, ' ') + 1
	head := arg[:cut]
	lowerArg := strings.ToLower(arg)
	var out []prompt.Suggest
	for _, n := range names {
		if head == "" {
			if strings.Contains(strings.ToLower(n), lowerArg) {
				out = append(out, prompt.Suggest{Text: n})
			}
			continue
		}
		// cut is a byte offset into arg; it must also land on a rune
		// boundary of n with the same words before it
		if len(n) <= cut || !utf8.RuneStart(n[cut]) || !strings.EqualFold(n[:cut], head) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(n[cut:]), strings.ToLower(arg[cut:])) {
			out = append(out, prompt.Suggest{Text: n[cut:], Description: n})
		}
	}
	return out
}
