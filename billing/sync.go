package billing

import (
	"erp-backend/models"
)

// RecalculateAndSyncInvoices recomputes the paid/balance snapshot fields of the
// named invoices from payments. Ids are deduplicated in first-seen order and
// unknown ids are skipped. Repeated calls with the same inputs return the same
// patch.
func RecalculateAndSyncInvoices(invoiceIDs []string, invoices models.InvoiceIndex, payments []models.Payment) []models.InvoicePatch {
	byInvoice := PaymentsByInvoice(payments)
	seen := make(map[string]struct{}, len(invoiceIDs))
	var out []models.InvoicePatch
	for _, id := range invoiceIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}

		inv, ok := invoices[id]
		if !ok {
			continue
		}
		st := GetInvoiceStatus(*inv, byInvoice[id])
		out = append(out, models.InvoicePatch{
			ID:             id,
			PaidTotalLocal: st.PaidAmount,
			BalanceLocal:   st.Balance,
			Status:         string(st.Status),
		})
	}
	return out
}

// SyncAll recomputes the snapshot fields of every invoice in snap.
func SyncAll(snap *models.Snapshot) []models.InvoicePatch {
	ids := make([]string, 0, len(snap.Sales)+len(snap.Purchases))
	for _, inv := range snap.Invoices() {
		ids = append(ids, inv.ID)
	}
	return RecalculateAndSyncInvoices(ids, snap.InvoiceIndex(), snap.Payments)
}

// CascadeDeleteInvoice returns the ids of the payments that go with invoiceID.
// Cash and bank balances are derived, so nothing needs reversing.
func CascadeDeleteInvoice(invoiceID string, payments []models.Payment) []string {
	var ids []string
	for _, p := range payments {
		if p.InvoiceID == invoiceID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// DeleteInvoicePatch removes an invoice together with its payments.
func DeleteInvoicePatch(invoiceID string, snap *models.Snapshot) models.Patch {
	return models.Patch{
		DeletePaymentIDs: CascadeDeleteInvoice(invoiceID, snap.Payments),
		DeleteInvoiceIDs: []string{invoiceID},
	}
}

// PaymentsPatch turns a payments mutation into a patch that also resyncs every
// invoice touched before or after the change.
func PaymentsPatch(snap *models.Snapshot, create, update []models.Payment, deleteIDs []string) models.Patch {
	old := make(map[string]models.Payment, len(snap.Payments))
	for _, p := range snap.Payments {
		old[p.ID] = p
	}

	var affected []string
	for _, id := range deleteIDs {
		affected = append(affected, old[id].InvoiceID)
	}
	for _, p := range update {
		affected = append(affected, old[p.ID].InvoiceID, p.InvoiceID)
	}
	for _, p := range create {
		affected = append(affected, p.InvoiceID)
	}

	patch := models.Patch{
		CreatePayments:   create,
		UpdatePayments:   update,
		DeletePaymentIDs: deleteIDs,
	}

	next := &models.Snapshot{Payments: append([]models.Payment(nil), snap.Payments...)}
	next.Apply(patch)
	patch.Invoices = RecalculateAndSyncInvoices(affected, snap.InvoiceIndex(), next.Payments)
	return patch
}
