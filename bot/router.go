package bot

import (
	"context"
	"errors"
	"fmt"

	"process_bot/charts"
	"process_bot/dataset"
	"process_bot/instructions"
	"process_bot/report"

	"github.com/sirupsen/logrus"
)

// InsightChunkSize is the longest narrative message sent in one piece.
const InsightChunkSize = 4000

// Route keys recorded for non-table outcomes.
const (
	RouteNewMember = "new_member"
	RouteUnknown   = "unknown"
)

// Event is one inbound chat message, reduced to what routing needs.
type Event struct {
	ChatID    int64
	Username  string
	Text      string
	NewMember bool
}

// Reply is one outbound message: text, or an image with a caption.
type Reply struct {
	Text     string
	Markdown bool
	Menu     bool
	Image    []byte
	Caption  string
}

func (r Reply) IsImage() bool { return r.Image != nil }

// DataSource loads the process table.
type DataSource interface {
	Load() (*dataset.Table, error)
}

// Messenger delivers replies to a chat.
type Messenger interface {
	SendText(chatID int64, text string, markdown bool) error
	SendMenu(chatID int64, prompt string, buttons []string) error
	SendPhoto(chatID int64, image []byte, caption string) error
}

type ChartRenderer interface {
	Render(spec charts.Spec) ([]byte, error)
}

type InsightSource interface {
	Generate(ctx context.Context, summary string) string
}

// Journal records handled commands. Optional.
type Journal interface {
	RecordCommand(chatID int64, username, text, route, outcome string) error
}

type Deps struct {
	Data     DataSource
	Out      Messenger
	Charts   ChartRenderer
	Insights InsightSource
	Journal  Journal
	// Contact is appended to the help text when set.
	Contact string
}

type action func(ctx context.Context, ev Event) ([]Reply, error)

type route struct {
	notice  string
	action  action
	failure string // format for errors other than a data load failure
}

// Router maps message text to report actions by exact match.
type Router struct {
	deps   Deps
	routes map[string]route
	log    *logrus.Entry
}

func NewRouter(deps Deps) *Router {
	r := &Router{
		deps: deps,
		log:  logrus.WithField("component", "router"),
	}

	summary := route{
		notice:  instructions.NoticeSummary,
		action:  r.summary,
		failure: instructions.MsgProcessingFailed,
	}
	menu := route{action: r.menu}

	r.routes = map[string]route{
		"/start":    {action: r.welcome},
		"/help":     {action: r.help},
		"/menu":     menu,
		"/keyboard": menu,
		"/summary":  summary,

		instructions.ButtonSummary:       summary,
		instructions.ButtonEfficiency:    r.chartRoute(instructions.NoticeEfficiency, charts.Efficiency),
		instructions.ButtonEnergy:        r.chartRoute(instructions.NoticeEnergy, charts.Energy),
		instructions.ButtonEnvironmental: r.chartRoute(instructions.NoticeEnvironmental, charts.Environmental),
		instructions.ButtonCost:          r.chartRoute(instructions.NoticeCost, charts.Cost),
		instructions.ButtonInsight: {
			notice:  instructions.NoticeInsight,
			action:  r.insight,
			failure: instructions.MsgInsightFailed,
		},
	}

	return r
}

// Handle runs one event to completion: notice, action, delivery, journal.
func (r *Router) Handle(ctx context.Context, ev Event) {
	log := r.log.WithFields(logrus.Fields{
		"chat_id": ev.ChatID,
		"text":    ev.Text,
	})

	key := ev.Text
	rt, ok := r.routes[ev.Text]
	switch {
	case ev.NewMember:
		key, rt, ok = RouteNewMember, r.routes["/start"], true
		log.Info("New chat member, sending welcome message")
	case !ok:
		key = RouteUnknown
		log.Info("Command not recognized")
	default:
		log.Info("Handling command")
	}

	var replies []Reply
	outcome := "ok"
	if !ok {
		outcome = "unrecognized"
		replies = []Reply{{Text: fmt.Sprintf(instructions.MsgUnknownCommand, ev.Text)}}
	} else {
		if rt.notice != "" {
			r.deliver(ev.ChatID, []Reply{{Text: rt.notice}})
		}
		var err error
		replies, err = rt.action(ctx, ev)
		if err != nil {
			outcome = "failed"
			log.WithError(err).Error("❌ Command failed")
			replies = []Reply{{Text: failureText(rt, err)}}
		}
	}

	if err := r.deliver(ev.ChatID, replies); err != nil {
		outcome = "undelivered"
	}
	r.record(ev, key, outcome)
}

func failureText(rt route, err error) string {
	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		return instructions.MsgDataLoadFailed
	}
	var renderErr *charts.RenderError
	if errors.As(err, &renderErr) {
		return fmt.Sprintf(instructions.MsgChartFailed, err)
	}
	if rt.failure != "" {
		return fmt.Sprintf(rt.failure, err)
	}
	return fmt.Sprintf(instructions.MsgProcessingFailed, err)
}

func (r *Router) deliver(chatID int64, replies []Reply) error {
	var firstErr error
	for i, reply := range replies {
		var err error
		switch {
		case reply.IsImage():
			err = r.deps.Out.SendPhoto(chatID, reply.Image, reply.Caption)
		case reply.Menu:
			err = r.deps.Out.SendMenu(chatID, reply.Text, instructions.MenuButtons)
		default:
			err = r.deps.Out.SendText(chatID, reply.Text, reply.Markdown)
		}
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"chat_id": chatID,
				"part":    i + 1,
			}).Error("❌ Failed to deliver reply")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) record(ev Event, key, outcome string) {
	if r.deps.Journal == nil {
		return
	}
	if err := r.deps.Journal.RecordCommand(ev.ChatID, ev.Username, ev.Text, key, outcome); err != nil {
		r.log.WithError(err).Warn("Failed to journal command")
	}
}

func (r *Router) welcome(context.Context, Event) ([]Reply, error) {
	return []Reply{
		{Text: instructions.WelcomeText, Markdown: true},
		{Text: instructions.MenuPrompt, Menu: true},
	}, nil
}

func (r *Router) help(context.Context, Event) ([]Reply, error) {
	text := instructions.HelpText
	if r.deps.Contact != "" {
		text += fmt.Sprintf(instructions.HelpContact, r.deps.Contact)
	}
	return []Reply{{Text: text}}, nil
}

func (r *Router) menu(context.Context, Event) ([]Reply, error) {
	return []Reply{{Text: instructions.MenuPrompt, Menu: true}}, nil
}

func (r *Router) summary(context.Context, Event) ([]Reply, error) {
	table, err := r.deps.Data.Load()
	if err != nil {
		return nil, err
	}
	s, err := report.Summarize(table)
	if err != nil {
		return nil, err
	}
	return []Reply{{Text: s.Text()}}, nil
}

func (r *Router) chartRoute(notice string, build charts.Builder) route {
	return route{
		notice:  notice,
		failure: instructions.MsgChartFailed,
		action: func(_ context.Context, _ Event) ([]Reply, error) {
			table, err := r.deps.Data.Load()
			if err != nil {
				return nil, err
			}
			img, spec, err := charts.Draw(r.deps.Charts, build, table)
			if err != nil {
				return nil, err
			}
			return []Reply{{Image: img, Caption: spec.Title}}, nil
		},
	}
}

func (r *Router) insight(ctx context.Context, _ Event) ([]Reply, error) {
	table, err := r.deps.Data.Load()
	if err != nil {
		return nil, err
	}
	s, err := report.Summarize(table)
	if err != nil {
		return nil, err
	}

	narrative := r.deps.Insights.Generate(ctx, s.Text())

	chunks := SplitChunks(narrative, InsightChunkSize)
	replies := make([]Reply, 0, len(chunks))
	for _, c := range chunks {
		replies = append(replies, Reply{Text: c})
	}
	return replies, nil
}

// SplitChunks cuts text into pieces of at most size runes, in order, without
// regard to word boundaries.
func SplitChunks(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
