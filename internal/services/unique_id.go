package services

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const maxIDAttempts = 5

// IDGenerator hands out assignment identifiers that are not yet stored.
type IDGenerator struct {
	Store UserPackageStore
	// New produces a candidate. Defaults to 10 hex characters taken from a random UUID.
	New func() string
}

func (g *IDGenerator) candidate() string {
	if g.New != nil {
		return g.New()
	}
	id := uuid.New()
	return hex.EncodeToString(id[:5])
}

// Generate returns a value absent from column, checking each candidate.
func (g *IDGenerator) Generate(ctx context.Context, column string) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		value := g.candidate()
		exists, err := g.Store.ExistsBy(ctx, column, value)
		if err != nil {
			return "", err
		}
		if !exists {
			return value, nil
		}
	}
	return "", fmt.Errorf("no unique %s after %d attempts", column, maxIDAttempts)
}

type assignmentIDs struct {
	Invoice     string
	Transaction string
	Terminal    string
	Ticket      string
}

func (g *IDGenerator) generateAll(ctx context.Context, withTicket bool) (assignmentIDs, error) {
	var ids assignmentIDs
	columns := []string{"invoice_id", "transaction_id", "terminal_id"}
	targets := []*string{&ids.Invoice, &ids.Transaction, &ids.Terminal}
	if withTicket {
		columns = append(columns, "ticket_id")
		targets = append(targets, &ids.Ticket)
	}
	for i, column := range columns {
		v, err := g.Generate(ctx, column)
		if err != nil {
			return assignmentIDs{}, err
		}
		*targets[i] = v
	}
	return ids, nil
}
