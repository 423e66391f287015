package model

// Roles an order draft can be routed to.
const (
	SendToSales      = "Sales"
	SendToDesigner   = "Designer"
	SendToProduction = "Production"
)

// UploadMeta describes a file the client sent with the order requirements.
type UploadMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`

	// URL is a runtime-only link; it does not survive a reload.
	URL string `json:"url,omitempty"`
}

// DesignerUpload is one item in the per-order designer manifest handed to production.
type DesignerUpload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type,omitempty"`
	Ext     string `json:"ext,omitempty"`
	IsImage bool   `json:"isImage"`

	// PreviewURL is a data URL that survives a reload.
	PreviewURL string `json:"previewUrl,omitempty"`

	// URL is a runtime-only link.
	URL string `json:"url,omitempty"`
}

// FormData is the order draft shared across the order-stage views.
type FormData struct {
	OrderID            *string
	ProjectDescription *string
	ClientName         *string
	ClientCompany      *string
	ClientLocation     *string
	Specifications     *string
	SendTo             *string
	Urgency            *string
	Status             *string
	CustomField        *string

	LabourCost           *Amount
	FinishingCost        *Amount
	PaperMaterialCost    *Amount
	MachineUsageCost     *Amount
	DesignComplexityCost *Amount
	DeliveryCost         *Amount
	OtherCharges         *Amount
	Discount             *Amount
	AdvancePaid          *Amount
	Remaining            *Amount
	FinalPrice           *Amount
	Tax                  *Amount
	Shipping             *Amount
	VAT                  *Amount

	// OrderIntakeFiles are the files shown under the client requirements.
	OrderIntakeFiles []UploadMeta

	// InternalComments holds designer notes keyed by order ID.
	InternalComments map[string]string

	// DesignerUploads is the canonical per-order manifest keyed by order ID.
	DesignerUploads map[string][]DesignerUpload

	// Extensions holds any field this package does not know about.
	Extensions map[string]any
}

// NewFormData returns the initial draft: empty containers and nothing else.
func NewFormData() FormData {
	return FormData{
		OrderIntakeFiles: []UploadMeta{},
		InternalComments: map[string]string{},
		DesignerUploads:  map[string][]DesignerUpload{},
	}
}

// AdvancePayment is the legacy name for AdvancePaid.
func (f *FormData) AdvancePayment() *Amount {
	return cloneAmount(f.AdvancePaid)
}

// FinalTotal is the legacy name for FinalPrice.
func (f *FormData) FinalTotal() *Amount {
	return cloneAmount(f.FinalPrice)
}

// Normalize makes sure every container is non-nil.
func (f *FormData) Normalize() {
	if f.OrderIntakeFiles == nil {
		f.OrderIntakeFiles = []UploadMeta{}
	}
	if f.InternalComments == nil {
		f.InternalComments = map[string]string{}
	}
	if f.DesignerUploads == nil {
		f.DesignerUploads = map[string][]DesignerUpload{}
	}
}

// Clone returns a deep copy.
func (f FormData) Clone() FormData {
	out := f

	for _, name := range stringFieldNames {
		p := stringFields[name](&out)
		if *p != nil {
			s := **p
			*p = &s
		}
	}
	for _, name := range amountFieldNames {
		p := amountFields[name](&out)
		*p = cloneAmount(*p)
	}

	if f.OrderIntakeFiles != nil {
		out.OrderIntakeFiles = append([]UploadMeta{}, f.OrderIntakeFiles...)
	}
	if f.InternalComments != nil {
		out.InternalComments = make(map[string]string, len(f.InternalComments))
		for k, v := range f.InternalComments {
			out.InternalComments[k] = v
		}
	}
	if f.DesignerUploads != nil {
		out.DesignerUploads = make(map[string][]DesignerUpload, len(f.DesignerUploads))
		for k, v := range f.DesignerUploads {
			out.DesignerUploads[k] = append([]DesignerUpload{}, v...)
		}
	}
	if f.Extensions != nil {
		out.Extensions = make(map[string]any, len(f.Extensions))
		for k, v := range f.Extensions {
			out.Extensions[k] = cloneValue(v)
		}
	}
	return out
}

func cloneAmount(a *Amount) *Amount {
	if a == nil {
		return nil
	}
	c := *a
	c.raw = cloneValue(a.raw)
	return &c
}

// cloneValue copies the JSON-shaped values that can appear in extensions.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}
