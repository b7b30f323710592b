package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/service"
	appErrors "github.com/noah-isme/course-scheduler/pkg/errors"
	"github.com/noah-isme/course-scheduler/pkg/holiday"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "schedule-tool",
		Usage: "offline conflict and date checks against exported round snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "holidays",
				Usage:   "YAML holiday table; weekends-only when omitted",
				EnvVars: []string{"HOLIDAY_CALENDAR_FILE"},
			},
		},
		Commands: []*cli.Command{
			conflictsCommand(),
			recalcCommand(),
			nextWorkingDayCommand(),
		},
	}
}

func calendarFrom(c *cli.Context) (*service.CalendarService, error) {
	path := c.String("holidays")
	if path == "" {
		return service.NewCalendarService(models.WeekendsOnlyCalendar()), nil
	}
	calendar, err := holiday.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return service.NewCalendarService(calendar), nil
}

// withFallback runs fn against calendar and, when the holiday table does not
// cover a date fn needs, once more against the weekends-only calendar.
// It returns the calendar whose result fn last produced.
func withFallback(c *cli.Context, calendar *service.CalendarService, fn func(*service.CalendarService) error) (*service.CalendarService, error) {
	err := fn(calendar)
	if err == nil || calendar.Degraded() || !appErrors.Is(err, appErrors.ErrInvalidDate) {
		return calendar, err
	}
	warnLogger(c).Warn("holiday table does not cover the requested dates; using weekends-only calendar",
		zap.String("calendar_version", calendar.Version()),
		zap.Error(err),
	)
	fallback := calendar.WeekendsOnly()
	return fallback, fn(fallback)
}

func warnLogger(c *cli.Context) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(c.App.ErrWriter), zap.WarnLevel))
}

func conflictsCommand() *cli.Command {
	return &cli.Command{
		Name:  "conflicts",
		Usage: "list conflicts between a candidate session and a snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Required: true, Usage: "round snapshot JSON"},
			&cli.StringFlag{Name: "candidate", Required: true, Usage: "candidate session JSON"},
			&cli.BoolFlag{Name: "cohort", Usage: "also check trainee double-booking within the round"},
		},
		Action: func(c *cli.Context) error {
			roundID, existing, err := loadSnapshot(c.String("snapshot"))
			if err != nil {
				return err
			}
			var record sessionRecord
			if err := readJSON(c.String("candidate"), &record); err != nil {
				return err
			}
			candidate, err := record.toModel(roundID)
			if err != nil {
				return err
			}

			selector := service.SelectorFor(candidate)
			if c.Bool("cohort") {
				selector = selector.WithCohort(candidate.RoundID)
			}
			conflicts, err := service.NewConflictDetector().Detect(candidate, existing, selector)
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, map[string]interface{}{
				"hasConflicts": len(conflicts) > 0,
				"conflicts":    conflicts,
			})
		},
	}
}

func recalcCommand() *cli.Command {
	return &cli.Command{
		Name:  "recalc",
		Usage: "re-date a snapshot on consecutive working days",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Required: true, Usage: "round snapshot JSON"},
			&cli.StringFlag{Name: "anchor", Required: true, Usage: `first session date, ISO or relative ("next monday")`},
			&cli.StringFlag{Name: "move", Usage: "session id to move before re-dating"},
			&cli.IntFlag{Name: "to", Usage: "0-based target position for --move"},
		},
		Action: func(c *cli.Context) error {
			calendar, err := calendarFrom(c)
			if err != nil {
				return err
			}
			_, sessions, err := loadSnapshot(c.String("snapshot"))
			if err != nil {
				return err
			}
			anchor, err := service.ParseAnchorDate(c.String("anchor"), time.Now().UTC())
			if err != nil {
				return err
			}

			next := service.Renumber(service.Ordered(sessions))
			if moved := c.String("move"); moved != "" {
				if next, err = service.NewSessionSequencer(calendar).Reorder(next, moved, c.Int("to")); err != nil {
					return err
				}
			}
			ordered := next
			calendar, err = withFallback(c, calendar, func(cal *service.CalendarService) error {
				var recalcErr error
				next, recalcErr = service.NewSessionSequencer(cal).RecalculateDates(ordered, anchor)
				return recalcErr
			})
			if err != nil {
				return err
			}

			records := make([]sessionRecord, 0, len(next))
			for _, s := range next {
				records = append(records, fromModel(s))
			}
			return writeJSON(c.App.Writer, map[string]interface{}{
				"anchorDate":       anchor.Format(models.DateLayout),
				"calendarVersion":  calendar.Version(),
				"calendarDegraded": calendar.Degraded(),
				"changed":          len(service.Diff(sessions, next)),
				"sessions":         records,
			})
		},
	}
}

func nextWorkingDayCommand() *cli.Command {
	return &cli.Command{
		Name:  "next-working-day",
		Usage: "list the working days following a date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD, excluded from the result"},
			&cli.IntFlag{Name: "days", Value: 1, Usage: "number of working days to list"},
		},
		Action: func(c *cli.Context) error {
			calendar, err := calendarFrom(c)
			if err != nil {
				return err
			}
			current, err := service.ParseDate(c.String("date"))
			if err != nil {
				return err
			}
			count := c.Int("days")
			if count < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			var days []string
			calendar, err = withFallback(c, calendar, func(cal *service.CalendarService) error {
				days = make([]string, 0, count)
				day := current
				for len(days) < count {
					next, dayErr := cal.NextWorkingDay(day)
					if dayErr != nil {
						return dayErr
					}
					day = next
					days = append(days, day.Format(models.DateLayout))
				}
				return nil
			})
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, map[string]interface{}{
				"from":             c.String("date"),
				"days":             days,
				"calendarVersion":  calendar.Version(),
				"calendarDegraded": calendar.Degraded(),
			})
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
