package model

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Wire names of the known fields.
const (
	FieldOrderID            = "orderId"
	FieldProjectDescription = "projectDescription"
	FieldClientName         = "clientName"
	FieldClientCompany      = "clientCompany"
	FieldClientLocation     = "clientLocation"
	FieldSpecifications     = "specifications"
	FieldSendTo             = "sendTo"
	FieldUrgency            = "urgency"
	FieldStatus             = "status"
	FieldCustomField        = "customField"

	FieldLabourCost           = "labourCost"
	FieldFinishingCost        = "finishingCost"
	FieldPaperMaterialCost    = "paperMaterialCost"
	FieldMachineUsageCost     = "machineUsageCost"
	FieldDesignComplexityCost = "designComplexityCost"
	FieldDeliveryCost         = "deliveryCost"
	FieldOtherCharges         = "otherCharges"
	FieldDiscount             = "discount"
	FieldAdvancePaid          = "advancePaid"
	FieldRemaining            = "remaining"
	FieldFinalPrice           = "finalPrice"
	FieldTax                  = "tax"
	FieldShipping             = "shipping"
	FieldVAT                  = "vat"

	// Legacy names kept for older writers and readers.
	FieldAdvancePayment = "advancePayment"
	FieldFinalTotal     = "finalTotal"

	FieldOrderIntakeFiles = "orderIntakeFiles"
	FieldInternalComments = "internalComments"
	FieldDesignerUploads  = "designerUploads"
)

// Aliases maps each legacy field name to its canonical field.
var Aliases = map[string]string{
	FieldAdvancePayment: FieldAdvancePaid,
	FieldFinalTotal:     FieldFinalPrice,
}

// NumericFields is the set of keys coerced to numbers on update, legacy names included.
var NumericFields = []string{
	FieldLabourCost,
	FieldFinishingCost,
	FieldPaperMaterialCost,
	FieldMachineUsageCost,
	FieldDesignComplexityCost,
	FieldDeliveryCost,
	FieldOtherCharges,
	FieldDiscount,
	FieldAdvancePaid,
	FieldAdvancePayment,
	FieldRemaining,
	FieldTax,
	FieldShipping,
	FieldVAT,
	FieldFinalPrice,
	FieldFinalTotal,
}

var stringFieldNames = []string{
	FieldOrderID, FieldProjectDescription, FieldClientName, FieldClientCompany,
	FieldClientLocation, FieldSpecifications, FieldSendTo, FieldUrgency,
	FieldStatus, FieldCustomField,
}

var stringFields = map[string]func(*FormData) **string{
	FieldOrderID:            func(f *FormData) **string { return &f.OrderID },
	FieldProjectDescription: func(f *FormData) **string { return &f.ProjectDescription },
	FieldClientName:         func(f *FormData) **string { return &f.ClientName },
	FieldClientCompany:      func(f *FormData) **string { return &f.ClientCompany },
	FieldClientLocation:     func(f *FormData) **string { return &f.ClientLocation },
	FieldSpecifications:     func(f *FormData) **string { return &f.Specifications },
	FieldSendTo:             func(f *FormData) **string { return &f.SendTo },
	FieldUrgency:            func(f *FormData) **string { return &f.Urgency },
	FieldStatus:             func(f *FormData) **string { return &f.Status },
	FieldCustomField:        func(f *FormData) **string { return &f.CustomField },
}

var amountFieldNames = []string{
	FieldLabourCost, FieldFinishingCost, FieldPaperMaterialCost, FieldMachineUsageCost,
	FieldDesignComplexityCost, FieldDeliveryCost, FieldOtherCharges, FieldDiscount,
	FieldAdvancePaid, FieldRemaining, FieldFinalPrice, FieldTax, FieldShipping, FieldVAT,
}

var amountFields = map[string]func(*FormData) **Amount{
	FieldLabourCost:           func(f *FormData) **Amount { return &f.LabourCost },
	FieldFinishingCost:        func(f *FormData) **Amount { return &f.FinishingCost },
	FieldPaperMaterialCost:    func(f *FormData) **Amount { return &f.PaperMaterialCost },
	FieldMachineUsageCost:     func(f *FormData) **Amount { return &f.MachineUsageCost },
	FieldDesignComplexityCost: func(f *FormData) **Amount { return &f.DesignComplexityCost },
	FieldDeliveryCost:         func(f *FormData) **Amount { return &f.DeliveryCost },
	FieldOtherCharges:         func(f *FormData) **Amount { return &f.OtherCharges },
	FieldDiscount:             func(f *FormData) **Amount { return &f.Discount },
	FieldAdvancePaid:          func(f *FormData) **Amount { return &f.AdvancePaid },
	FieldRemaining:            func(f *FormData) **Amount { return &f.Remaining },
	FieldFinalPrice:           func(f *FormData) **Amount { return &f.FinalPrice },
	FieldTax:                  func(f *FormData) **Amount { return &f.Tax },
	FieldShipping:             func(f *FormData) **Amount { return &f.Shipping },
	FieldVAT:                  func(f *FormData) **Amount { return &f.VAT },
}

// IsNumericField reports whether name is coerced to a number on update.
func IsNumericField(name string) bool {
	_, ok := amountFields[CanonicalField(name)]
	return ok
}

// CanonicalField resolves a legacy alias to its canonical name.
func CanonicalField(name string) string {
	if canonical, ok := Aliases[name]; ok {
		return canonical
	}
	return name
}

// SetField assigns one field by wire name. A nil value clears the field.
// Numeric fields are coerced with ParseAmount, other scalars with fmt.Sprint,
// containers are decoded from their typed or JSON-shaped form. Unknown names
// go to Extensions. Only a container value of the wrong shape is an error.
func (f *FormData) SetField(name string, value any) error {
	name = CanonicalField(name)

	if get, ok := stringFields[name]; ok {
		p := get(f)
		switch t := value.(type) {
		case nil:
			*p = nil
		case string:
			*p = &t
		case *string:
			if t == nil {
				*p = nil
			} else {
				s := *t
				*p = &s
			}
		default:
			s := fmt.Sprint(t)
			*p = &s
		}
		return nil
	}

	if get, ok := amountFields[name]; ok {
		p := get(f)
		if value == nil {
			*p = nil
			return nil
		}
		if a, ok := value.(*Amount); ok && a == nil {
			*p = nil
			return nil
		}
		a := ParseAmount(value)
		*p = &a
		return nil
	}

	switch name {
	case FieldOrderIntakeFiles:
		var files []UploadMeta
		if err := decodeContainer(value, &files); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		if files == nil {
			files = []UploadMeta{}
		}
		f.OrderIntakeFiles = files
		return nil

	case FieldInternalComments:
		var comments map[string]string
		if err := decodeContainer(value, &comments); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		if comments == nil {
			comments = map[string]string{}
		}
		f.InternalComments = comments
		return nil

	case FieldDesignerUploads:
		var uploads map[string][]DesignerUpload
		if err := decodeContainer(value, &uploads); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		if uploads == nil {
			uploads = map[string][]DesignerUpload{}
		}
		f.DesignerUploads = uploads
		return nil
	}

	if value == nil {
		delete(f.Extensions, name)
		return nil
	}
	if f.Extensions == nil {
		f.Extensions = make(map[string]any)
	}
	f.Extensions[name] = value
	return nil
}

// Field returns the value stored under a wire name, legacy names included.
func (f *FormData) Field(name string) (any, bool) {
	name = CanonicalField(name)

	if get, ok := stringFields[name]; ok {
		p := *get(f)
		if p == nil {
			return nil, false
		}
		return *p, true
	}
	if get, ok := amountFields[name]; ok {
		p := *get(f)
		if p == nil {
			return nil, false
		}
		return *p, true
	}

	switch name {
	case FieldOrderIntakeFiles:
		return f.OrderIntakeFiles, true
	case FieldInternalComments:
		return f.InternalComments, true
	case FieldDesignerUploads:
		return f.DesignerUploads, f.DesignerUploads != nil
	}

	v, ok := f.Extensions[name]
	return v, ok
}

// decodeContainer decodes JSON-shaped input (maps, slices, numbers as float64
// or strings) into a typed container using the json tag names.
func decodeContainer[T any](input any, out *T) error {
	if v, ok := input.(T); ok {
		*out = v
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
