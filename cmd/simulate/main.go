// Command simulate plays a scripted call through the responder and prints
// each turn, without Twilio.
//
//	simulate -from +15145551234 "Bonjour" "C'est Jean" "Je veux une coupe"
//
// With no utterances it plays a built-in booking script.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/marcel-receptionist/cmd/mainconfig"
	"github.com/wolfman30/marcel-receptionist/internal/app/bootstrap"
	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/internal/voice"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

var defaultScript = []string{
	"Bonjour",
	"C'est Jean",
	"Je veux une coupe",
	"demain",
	"14h",
	"avec Marco",
}

func main() {
	from := flag.String("from", "+15145551234", "caller number")
	rulesOnly := flag.Bool("rules", false, "skip the LLM tiers")
	flag.Parse()

	cfg := appconfig.Load()
	if *rulesOnly {
		cfg.LLMTiers = []string{"rules"}
	}
	logger := logging.New(cfg.LogLevel)

	script := flag.Args()
	if len(script) == 0 {
		script = defaultScript
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadOptionalAWSConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "aws config:", err)
		os.Exit(1)
	}
	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Logger: logger, AWS: awsCfg, Registry: prometheus.NewRegistry()})
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := play(ctx, os.Stdout, app.Generator, voice.SessionID("sim-"+uuid.NewString()), *from, script); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type generator interface {
	Generate(ctx context.Context, utterance, sessionID, phone string) (responder.Reply, error)
}

// play feeds the script turn by turn and stops once Marcel would hang up.
func play(ctx context.Context, out io.Writer, gen generator, sessionID, from string, script []string) error {
	for _, line := range script {
		fmt.Fprintf(out, "Client: %s\n", line)
		reply, err := gen.Generate(ctx, line, sessionID, from)
		if err != nil {
			return fmt.Errorf("turn %q: %w", line, err)
		}
		fmt.Fprintf(out, "Marcel [%s]: %s\n", reply.Tier, reply.Text)
		if voice.ShouldConclude(reply) {
			fmt.Fprintln(out, "-- appel terminé --")
			return nil
		}
	}
	fmt.Fprintln(out, "-- fin du script --")
	return nil
}
