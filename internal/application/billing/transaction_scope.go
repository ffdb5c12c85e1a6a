package billing

import (
	"context"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/ledger"
)

// TransactionalRepositories provides access to the repositories that take
// part in a payment mutation, all bound to the same transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository

	// SequenceRepo returns the invoice sequence repository scoped to the current transaction
	SequenceRepo() billing.SequenceRepository

	// LedgerRepo returns the ledger entry repository scoped to the current transaction
	LedgerRepo() ledger.EntryRepository
}

// TransactionScope executes a function within a single database
// transaction. Invoice payments and their ledger mirrors commit or roll
// back together; a half-applied payment is never observable.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
