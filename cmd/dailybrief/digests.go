package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/longregen/dailybrief/internal/adapters/id"
	"github.com/longregen/dailybrief/internal/application/usecases"
	"github.com/longregen/dailybrief/internal/digest"
	"github.com/longregen/dailybrief/internal/ports"
)

// digestConfig maps the loaded configuration onto the usecase config.
func digestConfig(dryRun bool) usecases.DigestConfig {
	dc := usecases.DigestConfig{
		From: cfg.Email.From,
		Recipients: usecases.DigestRecipients{
			Events: cfg.Recipients.Events,
			Games:  cfg.Recipients.Games,
			TV:     cfg.Recipients.TV,
			Phone:  cfg.Recipients.Phone,
		},
		Area: digest.Area{
			Town:        cfg.Area.Town,
			County:      cfg.Area.County,
			Postcode:    cfg.Area.Postcode,
			RadiusMiles: cfg.Area.RadiusMiles,
		},
		Shift: digest.Shift{
			Role:      cfg.Shift.Role,
			PetName:   cfg.Shift.PetName,
			PetKind:   cfg.Shift.PetKind,
			SignOff:   cfg.Shift.SignOff,
			Start:     cfg.Shift.Start,
			End:       cfg.Shift.End,
			ZoneLabel: zoneLabel(cfg.Location),
		},
		Location: cfg.TimeLocation(),
	}
	if dryRun {
		dc.Payloads = os.Stdout
	}
	return dc
}

func zoneLabel(location string) string {
	if location == "Europe/London" {
		return "UK time"
	}
	return location + " time"
}

// digestRunner builds the usecase for one job and runs fn with it.
func digestRunner(cmd *cobra.Command, dc usecases.DigestConfig, mailer ports.Mailer, texter ports.Texter, fn func(*usecases.SendDigest) error) error {
	ctx := cmd.Context()
	ids := id.New()
	sink, _ := openAuditSink(ctx, ids)
	defer sink.Close()

	uc := usecases.NewSendDigest(generator, mailer, texter, sink, ids, appLog.With("component", "digest"), dc)
	return fn(uc)
}

// eventsCmd sends the local events newsletter
func eventsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Send the local events newsletter for the next three days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			mailer, err := newMailer(dryRun, cfg.Recipients.Events)
			if err != nil {
				return err
			}
			return digestRunner(cmd, digestConfig(dryRun), mailer, nil, func(uc *usecases.SendDigest) error {
				r, err := uc.SendEvents(cmd.Context())
				if err != nil {
					return err
				}
				if !dryRun {
					fmt.Printf("Sent %q to %s\n", r.Subject, cfg.Recipients.Events)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest instead of sending it")
	return cmd
}

// gamesCmd sends the VR games newsletter
func gamesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Send the VR games newsletter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			mailer, err := newMailer(dryRun, cfg.Recipients.Games)
			if err != nil {
				return err
			}
			return digestRunner(cmd, digestConfig(dryRun), mailer, nil, func(uc *usecases.SendDigest) error {
				r, err := uc.SendGames(cmd.Context())
				if err != nil {
					return err
				}
				if !dryRun {
					fmt.Printf("Sent %q to %s\n", r.Subject, cfg.Recipients.Games)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest instead of sending it")
	return cmd
}

// tvCmd sends the fact-checked TV guide
func tvCmd() *cobra.Command {
	var dryRun bool
	var promptFile string
	cmd := &cobra.Command{
		Use:   "tv",
		Short: "Send the fact-checked TV & entertainment guide",
		Long: `Generate today's TV & entertainment guide, fact-check it with a second
model call and send it by email.

--prompt-file replaces the built-in first-step prompt, for example with the
best prompt written by 'dailybrief optimize --out'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			dc := digestConfig(dryRun)
			if promptFile != "" {
				p, err := readPromptFile(promptFile)
				if err != nil {
					return err
				}
				dc.TVPrompt = p
			}
			mailer, err := newMailer(dryRun, cfg.Recipients.TV)
			if err != nil {
				return err
			}
			return digestRunner(cmd, dc, mailer, nil, func(uc *usecases.SendDigest) error {
				r, err := uc.SendTV(cmd.Context())
				if err != nil {
					return err
				}
				if !dryRun {
					fmt.Printf("Sent %q to %s\n", r.Subject, cfg.Recipients.TV)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest instead of sending it")
	cmd.Flags().StringVarP(&promptFile, "prompt-file", "p", "", "File holding the first-step prompt")
	return cmd
}

// shiftCmd texts the night-shift countdown
func shiftCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Text a motivational message with the hours left in the shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			texter, err := newTexter(dryRun)
			if err != nil {
				return err
			}
			return digestRunner(cmd, digestConfig(dryRun), nil, texter, func(uc *usecases.SendDigest) error {
				text, err := uc.SendShift(cmd.Context())
				if err != nil {
					return err
				}
				if !dryRun {
					fmt.Printf("Sent %d-character SMS to %s\n", len([]rune(text)), cfg.Recipients.Phone)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the message instead of sending it")
	return cmd
}
