package usecase

import (
	"strings"

	"storefront/internal/domain"
)

// AddressResolver turns a selection into a concrete delivery address. It is
// not safe for concurrent use; the checkout orchestrator guards it.
type AddressResolver struct {
	addresses []domain.SavedAddress
	selection domain.AddressSelection
}

// NewAddressResolver starts on the default saved address, or in manual mode
// when there are none.
func NewAddressResolver(addresses []domain.SavedAddress) *AddressResolver {
	r := &AddressResolver{
		addresses: append([]domain.SavedAddress(nil), addresses...),
	}
	r.selection.SavedIndex = r.DefaultIndex()
	if len(r.addresses) == 0 {
		r.selection.Mode = domain.AddressModeManual
	} else {
		r.selection.Mode = domain.AddressModeSaved
	}
	return r
}

func (r *AddressResolver) Addresses() []domain.SavedAddress {
	return append([]domain.SavedAddress(nil), r.addresses...)
}

// DefaultIndex is the first address flagged default, else 0, else NoSelection.
func (r *AddressResolver) DefaultIndex() int {
	if len(r.addresses) == 0 {
		return domain.NoSelection
	}
	for i, addr := range r.addresses {
		if addr.IsDefault {
			return i
		}
	}
	return 0
}

// Mode is always manual when there are no saved addresses.
func (r *AddressResolver) Mode() domain.AddressMode {
	if len(r.addresses) == 0 {
		return domain.AddressModeManual
	}
	return r.selection.Mode
}

func (r *AddressResolver) Selection() domain.AddressSelection {
	sel := r.selection
	sel.Mode = r.Mode()
	return sel
}

func (r *AddressResolver) SelectSaved(index int) error {
	if len(r.addresses) == 0 {
		return domain.NewValidationError("savedIndex", "No saved addresses available, please enter an address")
	}
	if index < 0 || index >= len(r.addresses) {
		return domain.NewValidationError("savedIndex", "Selected address is not available")
	}
	r.selection.Mode = domain.AddressModeSaved
	r.selection.SavedIndex = index
	return nil
}

// UseManual switches to manual entry. Previous manual fields are replaced.
func (r *AddressResolver) UseManual(manual domain.ManualAddress) {
	r.selection.Mode = domain.AddressModeManual
	r.selection.Manual = manual
}

// Apply sets both the mode and the matching half of a selection.
func (r *AddressResolver) Apply(sel domain.AddressSelection) error {
	switch sel.Mode {
	case domain.AddressModeSaved:
		return r.SelectSaved(sel.SavedIndex)
	case domain.AddressModeManual:
		r.UseManual(sel.Manual)
		return nil
	default:
		return domain.NewValidationError("addressMode", "address mode must be saved or manual")
	}
}

func (r *AddressResolver) ResolveCurrent() (domain.DeliveryAddress, error) {
	sel := r.Selection()
	return r.Resolve(sel.Mode, sel.SelectionState)
}

// Resolve copies the chosen address by value so later edits to the saved list
// cannot change it.
func (r *AddressResolver) Resolve(mode domain.AddressMode, state domain.SelectionState) (domain.DeliveryAddress, error) {
	if len(r.addresses) == 0 {
		mode = domain.AddressModeManual
	}

	switch mode {
	case domain.AddressModeSaved:
		if state.SavedIndex < 0 || state.SavedIndex >= len(r.addresses) {
			return domain.DeliveryAddress{}, domain.NewValidationError("savedIndex", "Selected address is not available")
		}
		saved := r.addresses[state.SavedIndex]
		return domain.DeliveryAddress{
			Label:   saved.Label,
			Street:  saved.Street,
			City:    saved.City,
			State:   saved.State,
			PinCode: saved.PinCode,
			Phone:   saved.Phone,
		}, nil

	case domain.AddressModeManual:
		m := state.Manual
		required := []struct {
			field string
			value string
		}{
			{"street", m.Street},
			{"city", m.City},
			{"pinCode", m.PinCode},
			{"phone", m.Phone},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				return domain.DeliveryAddress{}, domain.NewValidationError(f.field, "Please fill in all address fields")
			}
		}
		state := strings.TrimSpace(m.State)
		if state == "" {
			state = domain.ManualStatePlaceholder
		}
		return domain.DeliveryAddress{
			Street:  strings.TrimSpace(m.Street),
			City:    strings.TrimSpace(m.City),
			State:   state,
			PinCode: strings.TrimSpace(m.PinCode),
			Phone:   strings.TrimSpace(m.Phone),
		}, nil

	default:
		return domain.DeliveryAddress{}, domain.NewValidationError("addressMode", "address mode must be saved or manual")
	}
}
