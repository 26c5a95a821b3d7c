package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"erp-backend/utils"
)

// NormalizeResult is the canonical snapshot decoded from a legacy export, plus
// what the migration could not express canonically.
type NormalizeResult struct {
	Snapshot *Snapshot
	Warnings []string

	// Running balances as the legacy store had them (mutated in place). They are
	// not opening balances; see ledger.RebaseOpeningBalances.
	LegacyBankBalances map[string]float64
	LegacyCashInHand   *float64
}

// record is one loosely-shaped legacy JSON object.
type record map[string]any

// NormalizeSnapshot decodes a legacy export where the same concept may live under
// several field names and numbers may be strings. Every alias chain is resolved
// here so that business logic only ever reads canonical fields.
func NormalizeSnapshot(raw []byte) (*NormalizeResult, error) {
	var root record
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("normalize: decode snapshot: %w", err)
	}

	n := &normalizer{res: &NormalizeResult{
		Snapshot:           &Snapshot{},
		LegacyBankBalances: map[string]float64{},
	}}
	snap := n.res.Snapshot

	for i, r := range root.list("sales", "saleInvoices") {
		snap.Sales = append(snap.Sales, n.invoice(r, KindSale, fmt.Sprintf("sales[%d]", i)))
	}
	for i, r := range root.list("purchases", "purchaseInvoices") {
		snap.Purchases = append(snap.Purchases, n.invoice(r, KindPurchase, fmt.Sprintf("purchases[%d]", i)))
	}
	for i, r := range root.list("payments", "paymentRecords") {
		snap.Payments = append(snap.Payments, n.payment(r, fmt.Sprintf("payments[%d]", i)))
	}
	for _, r := range root.list("customers") {
		snap.Customers = append(snap.Customers, Customer{
			ID:      r.str("id", "_id"),
			Name:    r.str("name", "customerName"),
			Phone:   r.str("phone", "contact", "mobile"),
			Email:   r.str("email"),
			Address: r.str("address"),
			City:    r.str("city"),
			Country: r.str("country"),
			TaxID:   r.str("taxId", "tax_id", "ntn"),
		})
	}
	for _, r := range root.list("suppliers", "vendors") {
		snap.Suppliers = append(snap.Suppliers, Supplier{
			ID:       r.str("id", "_id"),
			Name:     r.str("name", "supplierName"),
			Phone:    r.str("phone", "contact", "mobile"),
			Email:    r.str("email"),
			Address:  r.str("address"),
			City:     r.str("city"),
			Country:  r.str("country"),
			Currency: strings.ToUpper(r.str("currency", "currency_code")),
		})
	}
	for _, r := range root.list("items", "products") {
		snap.Items = append(snap.Items, Item{
			ID:            r.str("id", "_id"),
			Name:          r.str("name", "itemName"),
			SKU:           r.str("sku", "code"),
			Unit:          r.str("unit", "uom"),
			SalePrice:     r.num("salePrice", "sale_price", "price"),
			SerialTracked: r.boolean("serialTracked", "isSerialized", "imeiTracked", "hasSerial"),
		})
	}
	for _, r := range root.list("banks", "bankAccounts") {
		b := Bank{
			ID:             r.str("id", "_id"),
			Name:           r.str("name", "bankName"),
			AccountNo:      r.str("accountNo", "account_no", "accountNumber"),
			OpeningBalance: r.num("openingBalance", "opening_balance"),
		}
		if r.has("balance", "currentBalance") {
			n.res.LegacyBankBalances[b.ID] = r.num("balance", "currentBalance")
		}
		snap.Banks = append(snap.Banks, b)
	}
	for i, r := range root.list("expenses") {
		snap.Expenses = append(snap.Expenses, Expense{
			ID:       r.str("id", "_id"),
			Date:     n.date(r, fmt.Sprintf("expenses[%d]", i), "date", "createdAt", "created_at"),
			Category: r.str("category", "type"),
			Amount:   r.num("amount_local", "amountLocal", "amount"),
			Method:   method(r.str("method", "paymentMethod", "payment_method")),
			BankID:   r.str("bankId", "bank_id"),
			Note:     r.str("note", "notes", "description"),
		})
	}
	for i, r := range root.list("returns", "saleReturns", "purchaseReturns") {
		snap.Returns = append(snap.Returns, n.ret(r, fmt.Sprintf("returns[%d]", i)))
	}
	for i, r := range root.list("notes", "creditNotes", "debitNotes") {
		snap.Notes = append(snap.Notes, n.note(r, fmt.Sprintf("notes[%d]", i)))
	}
	for i, r := range root.list("cashEntries", "cashTransactions") {
		snap.CashEntries = append(snap.CashEntries, CashEntry{
			ID:     r.str("id", "_id"),
			Date:   n.date(r, fmt.Sprintf("cashEntries[%d]", i), "date", "createdAt"),
			Type:   r.str("type", "category"),
			Method: method(r.str("method", "account")),
			BankID: r.str("bankId", "bank_id"),
			Amount: r.num("amount"),
			Note:   r.str("note", "notes"),
		})
	}

	switch v := root["cashInHand"].(type) {
	case nil:
	case map[string]any:
		cash := record(v).num("balance", "amount")
		n.res.LegacyCashInHand = &cash
		snap.CashInHand = record(v).num("opening", "openingBalance")
	default:
		cash := utils.ToNumber(v)
		n.res.LegacyCashInHand = &cash
	}
	if root.has("openingCashInHand") {
		snap.CashInHand = root.num("openingCashInHand")
	}
	snap.BaseCurrency = strings.ToUpper(root.str("baseCurrency", "base_currency", "currency"))
	snap.CurrencySymbol = root.str("currencySymbol", "currency_symbol")

	return n.res, nil
}

type normalizer struct {
	res *NormalizeResult
}

func (n *normalizer) warn(format string, args ...any) {
	n.res.Warnings = append(n.res.Warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) invoice(r record, kind InvoiceKind, where string) Invoice {
	rate := r.num("fx_rate_to_business", "fxRateToBusiness", "fxRate", "fx_rate", "exchangeRate")
	if rate <= 0 {
		rate = 1
	}
	inv := Invoice{
		ID:               r.str("id", "_id"),
		Kind:             kind,
		Number:           r.str("number", "invoiceNo", "invoice_number", "invoiceNumber"),
		Date:             n.date(r, where, "date", "invoiceDate", "invoice_date", "createdAt", "created_at"),
		Currency:         strings.ToUpper(r.str("currency", "currency_code", "currencyCode")),
		FxRateToBusiness: rate,
		PaymentMethod:    method(r.str("paymentMethod", "payment_method", "method")),
		BankID:           r.str("bankId", "bank_id"),
		Notes:            r.str("notes", "note", "remarks"),
	}
	if kind == KindSale {
		inv.CustomerID = r.str("customerId", "customer_id", "customer", "partyId")
	} else {
		inv.SupplierID = r.str("supplierId", "supplier_id", "supplier", "partyId")
	}
	if inv.PartyID() == "" {
		n.warn("%s (%s): no party reference", where, inv.ID)
	}

	inv.Subtotal, inv.SubtotalLocal = pair(r, rate, "subtotal", "subTotal")
	inv.Discount, inv.DiscountLocal = pair(r, rate, "discount")
	inv.Tax, inv.TaxLocal = pair(r, rate, "tax", "taxAmount")
	inv.Shipping, inv.ShippingLocal = pair(r, rate, "shipping", "shippingCost", "freight")
	inv.Total, inv.TotalLocal = pair(r, rate, "total", "grandTotal")

	inv.PaidAmountLocal = r.num("paid_amount_local", "paidAmount_local", "paidAmountLocal",
		"paidAmount_base", "paidAmount", "paid_amount", "amountPaid")

	for _, li := range r.list("items", "lineItems", "lines") {
		line := LineItem{
			ItemID:      li.str("itemId", "item_id", "productId", "product_id"),
			Description: li.str("description", "name"),
			Quantity:    li.num("quantity", "qty"),
			Serials:     li.strings("serials", "imeis", "serialNumbers", "imei"),
		}
		line.UnitPrice, line.UnitPriceLocal = pair(li, rate, "unitPrice", "unit_price", "price")
		if line.Quantity == 0 && len(line.Serials) > 0 {
			line.Quantity = float64(len(line.Serials))
		}
		inv.Items = append(inv.Items, line)
	}
	if inv.Total == 0 && inv.TotalLocal == 0 && len(inv.Items) > 0 {
		var parts []any
		for _, li := range inv.Items {
			parts = append(parts, li.Quantity*li.UnitPrice)
		}
		inv.Subtotal = utils.SafeSum(parts...)
		inv.Total = utils.SafeSum(inv.Subtotal, -inv.Discount, inv.Tax, inv.Shipping)
		inv.SubtotalLocal = utils.ToLocal(inv.Subtotal, rate)
		inv.TotalLocal = utils.ToLocal(inv.Total, rate)
		n.warn("%s (%s): total missing, derived from lines", where, inv.ID)
	}
	return inv
}

func (n *normalizer) payment(r record, where string) Payment {
	p := Payment{
		ID:        r.str("id", "_id"),
		GroupID:   r.str("groupId", "group_id", "batchId"),
		Date:      n.date(r, where, "date", "paymentDate", "createdAt", "created_at"),
		InvoiceID: r.str("invoiceId", "invoice_id", "saleId", "purchaseId", "refId"),
		Amount:    r.num("amount_local", "amountLocal", "amount"),
		Discount:  r.num("discount_local", "discount"),
		Method:    method(r.str("method", "paymentMethod", "payment_method", "mode")),
		BankID:    r.str("bankId", "bank_id"),
		Category:  r.str("category"),
		Reference: r.str("reference", "ref", "chequeNo"),
		Note:      r.str("note", "notes", "remarks"),
	}

	switch t := strings.ToLower(r.str("type", "direction")); t {
	case "in", "payment_in", "receive", "received", "receipt":
		p.Type = PaymentIn
	case "out", "payment_out", "pay", "paid":
		p.Type = PaymentOut
	case "":
		p.Type = PaymentIn
		n.warn("%s (%s): no payment direction, assuming in", where, p.ID)
	default:
		// Legacy rows used type for bookkeeping categories.
		if p.Category == "" {
			p.Category = t
		}
		p.Type = PaymentIn
		if strings.EqualFold(r.str("direction"), "out") || p.Amount < 0 {
			p.Type = PaymentOut
		}
	}
	if p.Amount < 0 {
		p.Amount = -p.Amount
	}

	p.PartyID = r.str("partyId", "party_id")
	p.PartyType = PartyType(strings.ToLower(r.str("partyType", "party_type")))
	if p.PartyID == "" {
		if id := r.str("customerId", "customer_id"); id != "" {
			p.PartyID, p.PartyType = id, PartyCustomer
		} else if id := r.str("supplierId", "supplier_id"); id != "" {
			p.PartyID, p.PartyType = id, PartySupplier
		}
	}
	if p.PartyType != "" && !p.PartyType.Valid() {
		n.warn("%s (%s): unknown party type %q dropped", where, p.ID, p.PartyType)
		p.PartyType = ""
	}
	return p
}

func (n *normalizer) ret(r record, where string) Return {
	out := Return{
		ID:          r.str("id", "_id"),
		Date:        n.date(r, where, "date", "createdAt", "created_at"),
		InvoiceID:   r.str("invoiceId", "invoice_id", "saleId", "purchaseId"),
		PartyID:     r.str("partyId", "party_id", "customerId", "supplierId"),
		PartyType:   PartyType(strings.ToLower(r.str("partyType", "party_type"))),
		AmountLocal: r.num("amount_local", "amountLocal", "total_local", "amount", "total"),
		Note:        r.str("note", "reason"),
	}
	switch kind := ReturnKind(strings.ToLower(r.str("kind", "type"))); {
	case kind == SaleReturn || kind == PurchaseReturn:
		out.Kind = kind
	case r.has("supplierId", "purchaseId") || out.PartyType == PartySupplier:
		out.Kind = PurchaseReturn
	default:
		out.Kind = SaleReturn
	}
	return out
}

func (n *normalizer) note(r record, where string) Note {
	out := Note{
		ID:          r.str("id", "_id"),
		Date:        n.date(r, where, "date", "createdAt", "created_at"),
		InvoiceID:   r.str("invoiceId", "invoice_id"),
		PartyID:     r.str("partyId", "party_id", "customerId", "supplierId"),
		PartyType:   PartyType(strings.ToLower(r.str("partyType", "party_type"))),
		AmountLocal: r.num("amount_local", "amountLocal", "amount"),
		Reason:      r.str("reason", "note"),
	}
	if strings.EqualFold(r.str("kind", "type"), string(DebitNote)) {
		out.Kind = DebitNote
	} else {
		out.Kind = CreditNote
	}
	if out.PartyType == "" {
		if r.has("customerId") {
			out.PartyType = PartyCustomer
		} else if r.has("supplierId") {
			out.PartyType = PartySupplier
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (n *normalizer) date(r record, where string, keys ...string) time.Time {
	v, ok := r.first(keys...)
	if !ok {
		n.warn("%s: no date", where)
		return time.Time{}
	}
	switch d := v.(type) {
	case float64:
		// epoch milliseconds
		return time.UnixMilli(int64(d)).UTC()
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	n.warn("%s: unparseable date %v", where, v)
	return time.Time{}
}

// pair resolves a foreign/local amount pair under any of the legacy spellings.
// A missing side is derived through the frozen rate.
func pair(r record, rate float64, names ...string) (foreign, local float64) {
	var fk, lk []string
	for _, name := range names {
		fk = append(fk, name, name+"_foreign", name+"Foreign")
		lk = append(lk, name+"_local", name+"Local", name+"_base", name+"Base")
	}
	foreign = r.num(fk...)
	local = r.num(lk...)
	switch {
	case local == 0 && foreign != 0:
		local = utils.ToLocal(foreign, rate)
	case foreign == 0 && local != 0:
		foreign = utils.Round2(local / rate)
	}
	return foreign, local
}

func method(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank", "bank_transfer", "transfer", "cheque", "card", "online":
		return MethodBank
	case "":
		return ""
	default:
		return MethodCash
	}
}

func (r record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (r record) has(keys ...string) bool {
	_, ok := r.first(keys...)
	return ok
}

func (r record) num(keys ...string) float64 {
	v, _ := r.first(keys...)
	return utils.ToNumber(v)
}

func (r record) str(keys ...string) string {
	v, ok := r.first(keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case map[string]any:
		// embedded reference object, e.g. "customer": {"id": "..."}
		return record(s).str("id", "_id")
	default:
		return fmt.Sprint(s)
	}
}

func (r record) boolean(keys ...string) bool {
	v, _ := r.first(keys...)
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || b == "1" || strings.EqualFold(b, "yes")
	case float64:
		return b != 0
	}
	return false
}

func (r record) strings(keys ...string) []string {
	v, _ := r.first(keys...)
	var out []string
	switch s := v.(type) {
	case []any:
		for _, e := range s {
			if str := strings.TrimSpace(fmt.Sprint(e)); str != "" {
				out = append(out, str)
			}
		}
	case string:
		for _, part := range strings.Split(s, ",") {
			if str := strings.TrimSpace(part); str != "" {
				out = append(out, str)
			}
		}
	}
	return out
}

func (r record) list(keys ...string) []record {
	var out []record
	for _, k := range keys {
		arr, ok := r[k].([]any)
		if !ok {
			continue
		}
		for _, e := range arr {
			if m, ok := e.(map[string]any); ok {
				out = append(out, record(m))
			}
		}
	}
	return out
}
