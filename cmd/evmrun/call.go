// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/evmcore/evmcore/chain"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/interpreter"
)

var CallCmd = cli.Command{
	Action:    doCall,
	Name:      "call",
	Usage:     "Run a single transaction from a fixture file against a fresh genesis",
	ArgsUsage: "<fixture.json>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Usage: "log each transaction before it runs"},
	},
}

func doCall(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: evmrun call <fixture.json>")
	}
	f, err := loadFixture(c.Args().Get(0))
	if err != nil {
		return err
	}
	if len(f.Transactions) != 1 {
		return fmt.Errorf("call expects exactly one transaction in the fixture, got %d", len(f.Transactions))
	}

	logger := log.New(os.Stderr, "evmrun ", log.LstdFlags)
	verbose := c.Bool("verbose")

	store := f.newAccountCache()
	d := dispatch.New(interpreter.New(), store, f.blockContext(), f.Transactions[0].Sender, f.Transactions[0].GasPrice)
	runner := chain.Runner{Dispatcher: d}

	tx := f.Transactions[0].toTransaction()
	if verbose {
		logger.Printf("running tx from %s to %v", tx.Sender, tx.Recipient)
	}

	receipt, err := runner.RunTx(tx, true)
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	store.Commit()

	return printJSON(receipt)
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parsing fixture: %w", err)
	}
	return f, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
