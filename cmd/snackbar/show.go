package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

var showOpts struct {
	actions        []string
	duration       string
	animation      string
	icon           string
	level          string
	soundFile      string
	noSound        bool
	transient      bool
	replaces       uint32
	dismissOnTap   bool
	dismissOnSwipe bool
	wait           bool
	timeout        time.Duration
}

var showCmd = &cobra.Command{
	Use:   "show MESSAGE",
	Short: "Show a snackbar",
	Long: `Ask snackbard to show a snackbar and print its id.

Actions are given as key:label; at most two are allowed. The first becomes
the primary action button, the second the secondary one.

With --wait the command blocks until the snackbar is dismissed, printing the
key of every invoked action and finally the dismissal reason.

Examples:
  snackbar show "Message archived" --action undo:Undo
  snackbar show "Uploading" --duration forever --action cancel:Cancel --wait
  snackbar show "Disk almost full" --level warning --animation slide-top-down`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringArrayVarP(&showOpts.actions, "action", "a", nil,
		"Action as key:label (repeatable, at most two)")
	showCmd.Flags().StringVarP(&showOpts.duration, "duration", "d", "",
		"Duration (short, middle, long, forever)")
	showCmd.Flags().StringVar(&showOpts.animation, "animation", "",
		"Animation style ("+strings.Join(snackbar.StyleNames(), ", ")+")")
	showCmd.Flags().StringVarP(&showOpts.icon, "icon", "i", "",
		"Icon name or path")
	showCmd.Flags().StringVarP(&showOpts.level, "level", "l", "",
		"Level ("+strings.Join(model.ValidLevels(), ", ")+")")
	showCmd.Flags().StringVar(&showOpts.soundFile, "sound-file", "",
		"Sound to play instead of the level's sound")
	showCmd.Flags().BoolVar(&showOpts.noSound, "no-sound", false,
		"Do not play a sound")
	showCmd.Flags().BoolVar(&showOpts.transient, "transient", false,
		"Do not record the snackbar in history")
	showCmd.Flags().Uint32Var(&showOpts.replaces, "replaces", 0,
		"Id of a snackbar to replace")
	showCmd.Flags().BoolVar(&showOpts.dismissOnTap, "dismiss-on-tap", true,
		"Dismiss when tapped (default: daemon setting)")
	showCmd.Flags().BoolVar(&showOpts.dismissOnSwipe, "dismiss-on-swipe", true,
		"Dismiss when swiped (default: daemon setting)")
	showCmd.Flags().BoolVarP(&showOpts.wait, "wait", "w", false,
		"Wait until the snackbar is dismissed")
	showCmd.Flags().DurationVar(&showOpts.timeout, "timeout", 0,
		"Give up waiting after this long (0 = no limit)")
}

// parseActions parses key:label pairs. A bare key is its own label.
func parseActions(pairs []string) ([]model.Action, error) {
	if len(pairs) > 2 {
		return nil, fmt.Errorf("at most two actions are supported, got %d", len(pairs))
	}
	actions := make([]model.Action, 0, len(pairs))
	for _, pair := range pairs {
		key, label, found := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid action %q: empty key", pair)
		}
		if !found || strings.TrimSpace(label) == "" {
			label = key
		}
		actions = append(actions, model.Action{Key: key, Label: strings.TrimSpace(label)})
	}
	return actions, nil
}

// buildShowRequest combines flags with the [show] defaults of the config.
func buildShowRequest(cmd *cobra.Command, message string) (*dbus.ShowRequest, error) {
	actions, err := parseActions(showOpts.actions)
	if err != nil {
		return nil, err
	}

	durationName := showOpts.duration
	if durationName == "" {
		durationName = cfg.Show.Duration
	}
	duration, err := snackbar.ParseDuration(durationName)
	if err != nil {
		return nil, err
	}

	level := showOpts.level
	if level == "" {
		level = cfg.Show.Level
	}
	if level != "" && model.NormalizeLevel(level) != strings.ToLower(level) {
		return nil, fmt.Errorf("invalid level %q (use %s)", level, strings.Join(model.ValidLevels(), ", "))
	}

	req := &dbus.ShowRequest{
		ReplacesID:    showOpts.replaces,
		Message:       message,
		Icon:          showOpts.icon,
		Actions:       actions,
		Duration:      duration,
		Level:         model.NormalizeLevel(level),
		SoundFile:     showOpts.soundFile,
		SuppressSound: showOpts.noSound,
		Transient:     showOpts.transient,
	}

	animation := showOpts.animation
	if animation == "" {
		animation = cfg.Show.Animation
	}
	if animation != "" {
		style, err := snackbar.ParseStyle(animation)
		if err != nil {
			return nil, err
		}
		req.Style = style
		req.HasStyle = true
	}

	if cmd.Flags().Changed("dismiss-on-tap") {
		req.DismissOnTap = &showOpts.dismissOnTap
	}
	if cmd.Flags().Changed("dismiss-on-swipe") {
		req.DismissOnSwipe = &showOpts.dismissOnSwipe
	}
	return req, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	req, err := buildShowRequest(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	// Subscribe before showing so that a short snackbar cannot be missed
	var monitor *dbus.Monitor
	if showOpts.wait {
		monitor = dbus.NewMonitor(client.Conn(), logger)
		if err := monitor.Start(); err != nil {
			return err
		}
		defer func() { _ = monitor.Stop() }()
	}

	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	id, err := client.Show(callCtx, req)
	cancel()
	if err != nil {
		return err
	}
	fmt.Println(id)

	if !showOpts.wait {
		return nil
	}

	if showOpts.timeout > 0 {
		var cancelWait context.CancelFunc
		ctx, cancelWait = context.WithTimeout(ctx, showOpts.timeout)
		defer cancelWait()
	}

	reason, err := dbus.WaitDismissed(ctx, monitor.Events(), id, func(key string) {
		fmt.Println("action:", key)
	})
	if err != nil {
		return fmt.Errorf("failed waiting for snackbar %d: %w", id, err)
	}
	fmt.Println("dismissed:", reason)
	return nil
}
