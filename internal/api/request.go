package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"medstock/m/domain"
)

// looseValue keeps the raw text of a JSON scalar so numbers may arrive
// either as 12 or "12", and so a missing key can be told apart from an
// empty one.
type looseValue struct {
	present bool
	quoted  bool
	raw     string
}

func (v *looseValue) UnmarshalJSON(b []byte) error {
	v.present = true
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		v.raw = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v.quoted = true
		v.raw = strings.TrimSpace(str)
	default:
		v.raw = s
	}
	return nil
}

// text reports whether the value arrived as a JSON string. Anything else
// that is not blank was a number, boolean, object or array.
func (v looseValue) text() bool {
	return v.quoted || v.raw == ""
}

// empty reports the values a client would consider blank: "", null and a
// bare 0.
func (v looseValue) empty() bool {
	return v.raw == "" || (!v.quoted && (v.raw == "0" || v.raw == "false"))
}

func (v looseValue) int64() (int64, error) {
	return strconv.ParseInt(v.raw, 10, 64)
}

type addMedicineRequest struct {
	Name     looseValue `json:"name"`
	Batch    looseValue `json:"batch"`
	Expiry   looseValue `json:"expiry"`
	Brand    looseValue `json:"brand"`
	Supplier looseValue `json:"supplier"`
	Quantity looseValue `json:"quantity"`
}

// toInput checks every required field in order and converts the request
// into a store input. Field-level rules beyond presence are left to
// StockInput.Validate.
func (req addMedicineRequest) toInput() (domain.StockInput, error) {
	fields := []struct {
		name    string
		value   looseValue
		numeric bool
	}{
		{"name", req.Name, false},
		{"batch", req.Batch, false},
		{"expiry", req.Expiry, false},
		{"brand", req.Brand, false},
		{"supplier", req.Supplier, false},
		{"quantity", req.Quantity, true},
	}
	for _, f := range fields {
		if !f.value.present {
			return domain.StockInput{}, domain.Invalid(f.name, "Missing required field: "+f.name)
		}
		if f.value.empty() {
			return domain.StockInput{}, domain.Invalid(f.name, "Field "+f.name+" cannot be empty")
		}
		if !f.numeric && !f.value.text() {
			return domain.StockInput{}, domain.Invalid(f.name, "Field "+f.name+" must be a string")
		}
	}

	quantity, err := req.Quantity.int64()
	if err != nil {
		return domain.StockInput{}, domain.Invalid("quantity", "Quantity must be a valid number")
	}
	if quantity <= 0 {
		return domain.StockInput{}, domain.Invalid("quantity", "Quantity must be greater than 0")
	}

	in := domain.StockInput{
		Name:     req.Name.raw,
		Batch:    req.Batch.raw,
		Expiry:   req.Expiry.raw,
		Brand:    req.Brand.raw,
		Supplier: req.Supplier.raw,
		Quantity: quantity,
	}
	if err := in.Validate(); err != nil {
		return domain.StockInput{}, err
	}
	return in, nil
}

type dispenseRequest struct {
	MedicineID looseValue `json:"medicine_id"`
	Quantity   looseValue `json:"quantity"`
	Patient    looseValue `json:"patient"`
}

type dispenseCommand struct {
	MedicineID int64
	Quantity   int64
	Patient    string
}

func (req dispenseRequest) toCommand() (dispenseCommand, error) {
	if !req.MedicineID.present || !req.Quantity.present || !req.Patient.present {
		return dispenseCommand{}, domain.Invalid("", "Missing required fields")
	}

	id, err := req.MedicineID.int64()
	if err != nil {
		return dispenseCommand{}, domain.Invalid("medicine_id", "Invalid data format")
	}
	quantity, err := req.Quantity.int64()
	if err != nil {
		return dispenseCommand{}, domain.Invalid("quantity", "Invalid data format")
	}
	if quantity <= 0 {
		return dispenseCommand{}, domain.Invalid("quantity", "Quantity must be greater than 0")
	}
	if !req.Patient.text() {
		return dispenseCommand{}, domain.Invalid("patient", "Invalid data format")
	}
	patient := strings.TrimSpace(req.Patient.raw)
	if patient == "" {
		return dispenseCommand{}, domain.Invalid("patient", "Patient name is required")
	}

	return dispenseCommand{MedicineID: id, Quantity: quantity, Patient: patient}, nil
}
