package domain

import "github.com/google/uuid"

// Edit mutates a working copy of an invoice. Edits never touch totals;
// ApplyEdit recomputes them after the last edit.
type Edit func(inv *Invoice)

// ApplyEdit returns a new invoice with the edits applied and totals
// recomputed. The input invoice is left untouched.
func ApplyEdit(inv *Invoice, edits ...Edit) *Invoice {
	out := inv.Clone()
	for _, edit := range edits {
		edit(out)
	}
	out.Totals = ComputeTotals(out.Items, out.Tax)
	return out
}

func SetSeller(p Party) Edit {
	return func(inv *Invoice) { inv.Seller = p.clone() }
}

func SetCustomer(p Party) Edit {
	return func(inv *Invoice) { inv.Customer = p.clone() }
}

func SetCurrency(c Currency) Edit {
	return func(inv *Invoice) { inv.Currency = c }
}

func SetTemplate(key TemplateKey) Edit {
	return func(inv *Invoice) { inv.Template = key }
}

func SetQREnabled(enabled bool) Edit {
	return func(inv *Invoice) { inv.QREnabled = enabled }
}

// ApplyPreset switches the tax regime while keeping the rest of the draft
func ApplyPreset(p Preset) Edit {
	return func(inv *Invoice) {
		inv.PresetKey = p.Key
		inv.Tax = p.Tax
		if p.Tax.IsTaxed() && inv.Seller.TaxID == nil {
			empty := ""
			inv.Seller.TaxID = &empty
		}
	}
}

// AddItem appends an item, assigning an id when it has none
func AddItem(item Item) Edit {
	return func(inv *Invoice) {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		inv.Items = append(inv.Items, item)
	}
}

// UpdateItem applies fn to the item with the given id; unknown ids are ignored
func UpdateItem(id string, fn func(item *Item)) Edit {
	return func(inv *Invoice) {
		for idx := range inv.Items {
			if inv.Items[idx].ID == id {
				fn(&inv.Items[idx])
				inv.Items[idx].ID = id
				return
			}
		}
	}
}

func RemoveItem(id string) Edit {
	return func(inv *Invoice) {
		for idx := range inv.Items {
			if inv.Items[idx].ID == id {
				inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
				return
			}
		}
	}
}

// MoveItem moves an item to position to, clamped to the list bounds
func MoveItem(id string, to int) Edit {
	return func(inv *Invoice) {
		from := -1
		for idx := range inv.Items {
			if inv.Items[idx].ID == id {
				from = idx
				break
			}
		}
		if from < 0 {
			return
		}
		if to < 0 {
			to = 0
		}
		if to >= len(inv.Items) {
			to = len(inv.Items) - 1
		}

		item := inv.Items[from]
		inv.Items = append(inv.Items[:from], inv.Items[from+1:]...)
		inv.Items = append(inv.Items[:to], append([]Item{item}, inv.Items[to:]...)...)
	}
}

// SetLogo attaches an already checked logo (see NewLogo)
func SetLogo(logo *Logo) Edit {
	return func(inv *Invoice) { inv.Logo = logo.Clone() }
}

func ClearLogo() Edit {
	return func(inv *Invoice) { inv.Logo = nil }
}
