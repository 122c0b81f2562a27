package panels

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"mycobot/internal/storage"
	"mycobot/internal/voice"
)

// Asker is the prompt dispatcher as seen by the panels.
type Asker interface {
	Ask(ctx context.Context, prompt string) string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) string
}

type ChatHistory interface {
	Records() ([]storage.ChatRecord, error)
}

type Deps struct {
	Asker       Asker
	Transcriber Transcriber
	ChatLog     ChatHistory
	FarmLog     *storage.FieldLog
	EnvLog      *storage.FieldLog
	JournalLog  *storage.FieldLog
	PhotoDir    string
	Now         func() time.Time
}

type Catalog struct {
	deps   Deps
	panels []Panel
	byName map[string]int
}

var (
	species    = []string{"Agaricus", "Oyster", "Shiitake"}
	setups     = []string{"Terrace", "Indoor", "Balcony", "Greenhouse"}
	substrates = []string{"Wheat Straw", "Manure", "Saw Dust"}
)

func NewCatalog(d Deps) *Catalog {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.PhotoDir == "" {
		d.PhotoDir = "."
	}
	c := &Catalog{deps: d, byName: map[string]int{}}
	for i, p := range definitions() {
		c.panels = append(c.panels, p)
		c.byName[p.Name] = i
	}
	return c
}

func (c *Catalog) Panels() []Panel { return append([]Panel(nil), c.panels...) }

func (c *Catalog) Get(name string) (Panel, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Panel{}, false
	}
	return c.panels[i], true
}

// ErrUnknownPanel is returned by Run for names not in the catalog.
var ErrUnknownPanel = errors.New("unknown panel")

// Run validates in against the panel fields and executes the panel. Input
// problems come back as *InputError.
func (c *Catalog) Run(ctx context.Context, name string, in Input) (Output, error) {
	p, ok := c.Get(name)
	if !ok {
		return Output{}, fmt.Errorf("%w: %s", ErrUnknownPanel, name)
	}
	v, err := p.resolve(in, c.deps.Now())
	if err != nil {
		return Output{}, err
	}
	return p.run(ctx, c, v, in)
}

func promptPanel(name, title, button string, fields []Field, build func(Values) string) Panel {
	return Panel{
		Name:   name,
		Title:  title,
		Button: button,
		Fields: fields,
		run: func(ctx context.Context, c *Catalog, v Values, _ Input) (Output, error) {
			if c.deps.Asker == nil {
				return Output{}, errors.New("no dispatcher configured")
			}
			return Output{Text: c.deps.Asker.Ask(ctx, build(v))}, nil
		},
	}
}

func speciesField(def string) Field {
	return Field{Key: "species", Label: "Mushroom species", Kind: KindSelect, Options: species, Default: def}
}

func areaField() Field {
	return Field{Key: "area", Label: "Area (sq ft)", Kind: KindNumber, Default: "1", Min: 1, HasMin: true}
}

func substrateField() Field {
	return Field{Key: "substrate", Label: "Substrate", Kind: KindSelect, Options: substrates, Default: substrates[0]}
}

func dateField(label string) Field {
	return Field{Key: "date", Label: label, Kind: KindDate}
}

func definitions() []Panel {
	return []Panel{
		{
			Name:   "chat",
			Title:  "Ask MycoBot Anything About Mushroom Farming",
			Button: "Ask MycoBot",
			Fields: []Field{{Key: "question", Label: "Type your question", Kind: KindLongText}},
			run:    runChat,
		},
		promptPanel("substrate", "Substrate Recommendation", "Recommend Substrate",
			[]Field{
				speciesField(species[0]),
				{Key: "setup", Label: "Farming setup", Kind: KindSelect, Options: setups, Default: setups[0]},
				{Key: "city", Label: "City/Climate zone", Kind: KindText, Default: "Mumbai"},
			},
			func(v Values) string {
				return fmt.Sprintf("What is the best substrate to grow %s mushrooms in %s setup in %s?", v["species"], v["setup"], v["city"])
			}),
		promptPanel("yield", "Estimate Mushroom Yield", "Estimate Yield",
			[]Field{speciesField(species[0]), areaField(), substrateField()},
			func(v Values) string {
				return fmt.Sprintf("Estimate yield for %s using %s over %s sq ft.", v["species"], v["substrate"], v["area"])
			}),
		promptPanel("diagnose", "Diagnose Problems", "Diagnose",
			[]Field{{Key: "symptoms", Label: "Describe the issue", Kind: KindLongText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("My mushrooms have: %s. What is the cause and solution?", v["symptoms"])
			}),
		promptPanel("calendar", "Generate Cultivation Calendar", "Generate Calendar",
			[]Field{speciesField(species[0]), {Key: "start", Label: "Start date", Kind: KindDate}},
			func(v Values) string {
				return fmt.Sprintf("Give a cultivation schedule for %s starting from %s.", v["species"], v["start"])
			}),
		{
			Name:   "tracker",
			Title:  "Farm Task Logger",
			Button: "Log Task",
			Fields: []Field{dateField("Date"), {Key: "task", Label: "Task", Kind: KindLongText, Required: true}},
			run:    runTracker,
		},
		{
			Name:   "export",
			Title:  "Download Farm Log",
			Button: "Download Log",
			run:    runExport,
		},
		{
			Name:   "environment",
			Title:  "Record Environment Data",
			Button: "Log Environment",
			Fields: []Field{
				{Key: "temp", Label: "Temperature (°C)", Kind: KindNumber, Default: "0.0", Decimals: 1},
				{Key: "humidity", Label: "Humidity (%)", Kind: KindNumber, Default: "0.0", Min: 0, HasMin: true, Decimals: 1},
				dateField("Date"),
			},
			run: runEnvironment,
		},
		{
			Name:   "journal",
			Title:  "Growth Journal Entry",
			Button: "Save Journal Entry",
			Fields: []Field{dateField("Journal date"), {Key: "notes", Label: "Your observations", Kind: KindLongText, Required: true}},
			run:    runJournal,
		},
		promptPanel("vendors", "Find Vendors for Mushroom Farming", "Find Vendors",
			[]Field{{Key: "location", Label: "Your city or region", Kind: KindText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("List mushroom farming vendors, spawn suppliers, and grow bag sellers in %s.", v["location"])
			}),
		promptPanel("tools", "Recommend Tools or Equipment", "Recommend Tool",
			[]Field{{Key: "need", Label: "What you need help choosing", Kind: KindText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("What is the best tool or equipment for: %s?", v["need"])
			}),
		promptPanel("community", "Ask What the Community Recommends", "Get Community Advice",
			[]Field{{Key: "query", Label: "What to ask the online mushroom community", Kind: KindLongText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("Summarize what mushroom growers say online about: %s.", v["query"])
			}),
		promptPanel("videos", "Suggest Learning Videos", "Find Videos",
			[]Field{{Key: "topic", Label: "What you want to learn", Kind: KindText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("Suggest some YouTube videos or playlists that teach: %s related to mushroom cultivation.", v["topic"])
			}),
		promptPanel("profit", "Estimate Your Farming Profit", "Estimate Profit",
			[]Field{
				speciesField(species[0]),
				areaField(),
				substrateField(),
				{Key: "cost", Label: "Estimated total cost (₹)", Kind: KindNumber, Default: "0", Min: 0, HasMin: true},
			},
			func(v Values) string {
				return fmt.Sprintf("Estimate profit for growing %s mushrooms over %s sq ft using %s, with a total cost of ₹%s. Include potential revenue and margin.",
					v["species"], v["area"], v["substrate"], v["cost"])
			}),
		promptPanel("health", "Get Mushroom Health Score", "Score Health",
			[]Field{{Key: "description", Label: "Description of your mushroom batch", Kind: KindLongText, Required: true}},
			func(v Values) string {
				return fmt.Sprintf("Based on this description: '%s', rate the health of this mushroom crop out of 10 and suggest improvements.", v["description"])
			}),
		{
			Name:   "history",
			Title:  "Your Chat History",
			Button: "Download Chat History",
			run:    runHistory,
		},
	}
}

const askWarning = "Please enter or upload a question."

func runChat(ctx context.Context, c *Catalog, v Values, in Input) (Output, error) {
	question := v["question"]
	var notice string
	if len(in.Audio) > 0 && c.deps.Transcriber != nil {
		transcript := c.deps.Transcriber.Transcribe(ctx, in.Audio)
		notice = "Transcript: " + transcript
		if transcript == voice.FailureText {
			return Output{Notice: notice}, &InputError{Field: "question", Message: askWarning}
		}
		question = transcript
	}
	if question == "" {
		return Output{Notice: notice}, &InputError{Field: "question", Message: askWarning}
	}
	if c.deps.Asker == nil {
		return Output{}, errors.New("no dispatcher configured")
	}
	return Output{Text: c.deps.Asker.Ask(ctx, question), Notice: notice}, nil
}

func runTracker(_ context.Context, c *Catalog, v Values, _ Input) (Output, error) {
	if err := c.deps.FarmLog.Append(v["date"], v["task"]); err != nil {
		return Output{}, fmt.Errorf("save task: %w", err)
	}
	return Output{Text: fmt.Sprintf("Saved task for %s: %s", v["date"], v["task"])}, nil
}

func runEnvironment(_ context.Context, c *Catalog, v Values, _ Input) (Output, error) {
	if err := c.deps.EnvLog.Append(v["date"], v["temp"], v["humidity"]); err != nil {
		return Output{}, fmt.Errorf("save environment: %w", err)
	}
	return Output{Text: "Environment log saved."}, nil
}

func runJournal(_ context.Context, c *Catalog, v Values, in Input) (Output, error) {
	if err := c.deps.JournalLog.Append(v["date"], v["notes"]); err != nil {
		return Output{}, fmt.Errorf("save journal: %w", err)
	}
	if len(in.Photo) > 0 {
		if err := os.MkdirAll(c.deps.PhotoDir, 0o755); err != nil {
			return Output{}, fmt.Errorf("ensure photo dir: %w", err)
		}
		p := filepath.Join(c.deps.PhotoDir, "photo_"+v["date"]+".jpg")
		if err := os.WriteFile(p, in.Photo, 0o644); err != nil {
			return Output{}, fmt.Errorf("save photo: %w", err)
		}
	}
	return Output{Text: "Journal entry saved."}, nil
}

func runExport(_ context.Context, c *Catalog, _ Values, _ Input) (Output, error) {
	rows, err := c.deps.FarmLog.Rows(2)
	if errors.Is(err, fs.ErrNotExist) {
		return Output{Text: "No tasks logged yet."}, nil
	}
	if err != nil {
		return Output{}, fmt.Errorf("read farm log: %w", err)
	}
	header := []string{"Date", "Task"}
	return tableOutput(header, rows, "farm_log.csv")
}

func runHistory(_ context.Context, c *Catalog, _ Values, _ Input) (Output, error) {
	if c.deps.ChatLog == nil {
		return Output{Text: "No chat history found."}, nil
	}
	recs, err := c.deps.ChatLog.Records()
	if errors.Is(err, fs.ErrNotExist) {
		return Output{Text: "No chat history found."}, nil
	}
	if err != nil {
		return Output{}, fmt.Errorf("read chat log: %w", err)
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.Timestamp, r.Question, r.Answer})
	}
	return tableOutput([]string{"timestamp", "question", "answer"}, rows, "mycobot_chat_history.csv")
}

func tableOutput(header []string, rows [][]string, name string) (Output, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return Output{}, err
	}
	for _, r := range rows {
		// pad short rows so every record has the header's width
		if len(r) < len(header) {
			r = append(r, make([]string, len(header)-len(r))...)
		}
		if err := w.Write(r); err != nil {
			return Output{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Output{}, err
	}
	return Output{
		Text:    fmt.Sprintf("%d rows", len(rows)),
		Header:  header,
		Rows:    rows,
		CSV:     buf.String(),
		CSVName: name,
	}, nil
}
