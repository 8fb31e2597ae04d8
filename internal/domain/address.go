package domain

type AddressMode string

const (
	AddressModeSaved  AddressMode = "saved"
	AddressModeManual AddressMode = "manual"
)

// NoSelection is the saved-address index used when there is nothing to select.
const NoSelection = -1

// ManualStatePlaceholder fills a blank state on manually entered addresses.
const ManualStatePlaceholder = "N/A"

type ManualAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
	Phone   string `json:"phone"`
}

type SelectionState struct {
	SavedIndex int           `json:"savedIndex"`
	Manual     ManualAddress `json:"manual"`
}

// AddressSelection is the user's current choice. Only Mode decides which half applies.
type AddressSelection struct {
	Mode AddressMode `json:"addressMode"`
	SelectionState
}
