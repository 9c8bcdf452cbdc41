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
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"

	"github.com/evmcore/evmcore/chain"
	"github.com/evmcore/evmcore/dispatch"
	"github.com/evmcore/evmcore/interpreter"
	"github.com/evmcore/evmcore/word"
)

var BlockCmd = cli.Command{
	Action:    doBlock,
	Name:      "block",
	Usage:     "Run every transaction in a fixture file as a single block",
	ArgsUsage: "<fixture.json>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Usage: "log each transaction before it runs"},
	},
}

func doBlock(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("usage: evmrun block <fixture.json>")
	}
	f, err := loadFixture(c.Args().Get(0))
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "evmrun ", log.LstdFlags)
	verbose := c.Bool("verbose")

	store := f.newAccountCache()
	d := dispatch.New(interpreter.New(), store, f.blockContext(), word.Address{}, word.Word{})

	hooks := chain.Hooks{}
	if verbose {
		hooks.BeforeTx = func(tx *chain.Transaction) {
			logger.Printf("running tx from %s nonce=%d", tx.Sender, tx.Nonce)
		}
		hooks.AfterTx = func(tx *chain.Transaction, r *chain.Receipt) {
			logger.Printf("tx from %s: success=%v gasUsed=%d", tx.Sender, r.Success, r.GasUsed)
		}
	}

	block := chain.Block{
		Context:      f.blockContext(),
		Transactions: make([]chain.Transaction, len(f.Transactions)),
	}
	for i, tx := range f.Transactions {
		block.Transactions[i] = tx.toTransaction()
	}

	start := time.Now()
	result, err := chain.RunBlock(d, store, block, hooks)
	if err != nil {
		return fmt.Errorf("block execution failed: %w", err)
	}
	if elapsed := time.Since(start); elapsed > 0 {
		rate := float64(result.GasUsed) / elapsed.Seconds()
		logger.Printf("ran %d transactions, %s gas/s", len(block.Transactions), unitconv.FormatPrefix(rate, unitconv.SI, 0))
	}
	return printJSON(result)
}
