package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
)

type LoginCmd struct{}

func (c *LoginCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return deviceLogin(ctx, a.oauth, a.db, a.account, a.ui)
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(a *app) error {
	removed, err := deleteToken(a.db, a.account)
	if err != nil {
		return fmt.Errorf("delete token for %s: %w", a.account, err)
	}
	if !removed {
		a.ui.Err().Printf("No stored token for %s", a.account)
		return nil
	}
	a.ui.Out().Successf("✅ Signed out %s", a.account)
	return nil
}

type ProfileCmd struct {
	JSON bool `name:"json" help:"Print the raw profile as JSON"`
}

func (c *ProfileCmd) Run(a *app) error {
	printVerbosely(2, "🚀 Requesting profile...\n")
	if err := a.board.LoadProfile(context.Background()); err != nil {
		return err
	}

	profile := a.board.View().Profile
	if c.JSON {
		return writeJSON(a.ui.Out().Writer(), profile)
	}

	w := a.ui.Out()
	w.Printf("👤 %s %s", profile.GivenName, profile.Surname)
	if profile.Mail != "" {
		w.Printf("   Email: %s", profile.Mail)
	} else {
		w.Printf("   Email: %s", profile.UserPrincipalName)
	}
	if profile.JobTitle != "" {
		w.Printf("   Title: %s", profile.JobTitle)
	}
	w.Printf("   Id:    %s", profile.ID)
	return nil
}

type EventsCmd struct {
	JSON bool `name:"json" help:"Print events as JSON"`
}

func (c *EventsCmd) Run(a *app) error {
	printVerbosely(2, "🚀 Fetching calendar events...\n")
	if err := a.board.Refresh(context.Background()); err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(a.ui.Out().Writer(), a.board.Events())
	}
	printEvents(a)
	return nil
}

type AddCmd struct {
	Subject string `name:"subject" help:"Event title" required:""`
	Start   string `name:"start" help:"Start, wall clock in the business timezone (2006-01-02T15:04, seconds optional)" required:""`
	End     string `name:"end" help:"End, wall clock in the business timezone (2006-01-02T15:04, seconds optional)" required:""`
}

func (c *AddCmd) Run(a *app) error {
	created, err := a.board.Add(context.Background(), EventForm{Subject: c.Subject, Start: c.Start, End: c.End})
	if created != nil {
		a.ui.Out().Successf("✅ Event %q created (%s)", created.Subject, created.ID)
	}
	if err != nil {
		return err
	}
	printEvents(a)
	return nil
}

type EditCmd struct {
	ID      string `arg:"" name:"eventId" help:"Event ID"`
	Subject string `name:"subject" help:"New title"`
	Start   string `name:"start" help:"New start (2006-01-02T15:04, seconds optional)"`
	End     string `name:"end" help:"New end (2006-01-02T15:04, seconds optional)"`
}

func (c *EditCmd) Run(a *app) error {
	ctx := context.Background()
	if err := a.board.Refresh(ctx); err != nil {
		return err
	}

	form, err := a.board.OpenEdit(c.ID)
	if err != nil {
		return err
	}
	if c.Subject != "" {
		form.Subject = c.Subject
	}
	if c.Start != "" {
		form.Start = c.Start
	}
	if c.End != "" {
		form.End = c.End
	}

	updated, err := a.board.SaveEdit(ctx, c.ID, form)
	if updated != nil {
		a.ui.Out().Successf("✅ Event %q updated", updated.Subject)
	}
	if err != nil {
		return err
	}
	printEvents(a)
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" name:"eventId" help:"Event ID"`
	Yes bool   `name:"yes" short:"y" help:"Do not ask for confirmation"`
}

func (c *DeleteCmd) Run(a *app) error {
	if !c.Yes && !confirm(os.Stdin, a.ui, "⚠️  Are you sure you want to delete this event? (y/N): ") {
		a.ui.Err().Printf("❌ Event deletion cancelled")
		return nil
	}

	if err := a.board.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	a.ui.Out().Successf("✅ Event %s deleted successfully", c.ID)
	printEvents(a)
	return nil
}

type ServeCmd struct {
	Listen string `name:"listen" help:"Address to listen on (defaults to listen_addr)"`
}

func (c *ServeCmd) Run(a *app) error {
	addr := c.Listen
	if addr == "" {
		addr = a.config.ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the browser only shows a banner, so failures go to the log as errors
	a.board.LogFailuresAt(zerolog.ErrorLevel)

	a.ui.Out().Printf("🌐 Open http://%s in your browser", addr)
	return serve(ctx, addr, a.board)
}

func printEvents(a *app) {
	view := a.board.View()
	if len(view.Events) == 0 {
		a.ui.Err().Printf("No events")
		return
	}

	printVerbosely(1, "📅 Events (%s):\n", view.TimeZone)
	w := tabwriter.NewWriter(a.ui.Out().Writer(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSUBJECT\tSTART\tEND")
	for _, e := range view.Events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Subject, e.Start, e.End)
	}
	_ = w.Flush()
}

func confirm(in io.Reader, ui *UI, prompt string) bool {
	_, _ = io.WriteString(ui.Err().Writer(), prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
