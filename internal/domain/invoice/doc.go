// Package invoice contains the Invoice bounded context.
// It owns the single invoice document a user edits: parties, line items,
// discount and tax rates, presentation settings and the logo. Totals are
// always derived from the current fields and are never persisted.
package invoice
