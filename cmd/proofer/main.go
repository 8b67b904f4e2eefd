// Command proofer drives the proofer state machine (C8) against a
// live JSON-RPC/beacon-API endpoint, for manual testing of the
// artifact this module's verifier accepts — not part of the core's
// share count, but required to exercise C8 end-to-end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/corpus-core/c4go/beacon"
	"github.com/corpus-core/c4go/proofer"
	"github.com/corpus-core/c4go/rpcglue"
)

func main() {
	if err := beacon.CheckCanonicalGindexes(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := &cli.App{
		Name:      "proofer",
		Usage:     "generate a c4go light-client proof artifact via JSON-RPC",
		ArgsUsage: "<method> [params-json-array]",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "chain", Value: 1, Usage: "chain id to generate a proof for"},
			&cli.StringFlag{Name: "o", Usage: "output file path (default stdout)"},
			&cli.BoolFlag{Name: "v", Usage: "verbose logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("v") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if c.NArg() < 1 {
		return fmt.Errorf("usage: proofer <method> [params-json-array]")
	}
	method := c.Args().Get(0)

	var params []interface{}
	if raw := c.Args().Get(1); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return fmt.Errorf("parsing params json array: %w", err)
		}
	}

	pctx, err := proofer.New(method, params, c.Uint64("chain"))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"method": method, "params": params}).Info("generating proof")
	status, err := pctx.Execute(context.Background(), rpcglue.NewHTTPFetcher())
	if err != nil {
		return err
	}
	if status != proofer.Success {
		return fmt.Errorf("proofer did not reach a terminal success state (status=%d)", status)
	}

	if path := c.String("o"); path != "" {
		if err := os.WriteFile(path, pctx.ProofBytes, 0o644); err != nil {
			return fmt.Errorf("writing artifact: %w", err)
		}
		log.WithField("path", path).WithField("bytes", len(pctx.ProofBytes)).Info("wrote artifact")
		return nil
	}
	_, err = os.Stdout.Write(pctx.ProofBytes)
	return err
}
