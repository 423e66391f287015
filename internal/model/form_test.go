package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetField(t *testing.T) {
	f := NewFormData()

	require.NoError(t, f.SetField(FieldClientName, "Acme Print"))
	require.NoError(t, f.SetField(FieldDiscount, "15"))
	require.NoError(t, f.SetField(FieldFinalTotal, 250))
	require.NoError(t, f.SetField(FieldUrgency, 3))
	require.NoError(t, f.SetField("paperType", "matte"))

	require.NotNil(t, f.ClientName)
	assert.Equal(t, "Acme Print", *f.ClientName)
	require.NotNil(t, f.Discount)
	assert.Equal(t, "15", f.Discount.String())
	require.NotNil(t, f.FinalPrice)
	assert.Equal(t, "250", f.FinalPrice.String())
	assert.Equal(t, "250", f.FinalTotal().String())
	require.NotNil(t, f.Urgency)
	assert.Equal(t, "3", *f.Urgency)
	assert.Equal(t, "matte", f.Extensions["paperType"])

	require.NoError(t, f.SetField(FieldDiscount, nil))
	assert.Nil(t, f.Discount)

	require.NoError(t, f.SetField("paperType", nil))
	_, ok := f.Extensions["paperType"]
	assert.False(t, ok)
}

func TestSetField_Containers(t *testing.T) {
	f := NewFormData()

	err := f.SetField(FieldOrderIntakeFiles, []any{
		map[string]any{"name": "brief.pdf", "size": float64(2048), "type": "application/pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, []UploadMeta{{Name: "brief.pdf", Size: 2048, Type: "application/pdf"}}, f.OrderIntakeFiles)

	err = f.SetField(FieldDesignerUploads, map[string]any{
		"ORD-1": []any{map[string]any{"id": "u1", "name": "front.png", "size": "10", "isImage": true}},
	})
	require.NoError(t, err)
	assert.Equal(t, []DesignerUpload{{ID: "u1", Name: "front.png", Size: 10, IsImage: true}}, f.DesignerUploads["ORD-1"])

	err = f.SetField(FieldInternalComments, "not a map")
	assert.Error(t, err)

	require.NoError(t, f.SetField(FieldInternalComments, nil))
	assert.NotNil(t, f.InternalComments)
	assert.Empty(t, f.InternalComments)
}

func TestFormData_Clone(t *testing.T) {
	f := NewFormData()
	require.NoError(t, f.SetField(FieldClientName, "Acme"))
	require.NoError(t, f.SetField(FieldAdvancePaid, "40"))
	f.OrderIntakeFiles = append(f.OrderIntakeFiles, UploadMeta{Name: "a.pdf", Size: 1})
	f.InternalComments["ORD-1"] = "check bleed"
	f.Extensions = map[string]any{"meta": map[string]any{"k": "v"}}

	c := f.Clone()
	*c.ClientName = "Other"
	c.OrderIntakeFiles[0].Name = "changed.pdf"
	c.InternalComments["ORD-1"] = "changed"
	c.Extensions["meta"].(map[string]any)["k"] = "changed"

	assert.Equal(t, "Acme", *f.ClientName)
	assert.Equal(t, "a.pdf", f.OrderIntakeFiles[0].Name)
	assert.Equal(t, "check bleed", f.InternalComments["ORD-1"])
	assert.Equal(t, "v", f.Extensions["meta"].(map[string]any)["k"])
}

func TestFormData_JSON(t *testing.T) {
	f := NewFormData()
	require.NoError(t, f.SetField(FieldOrderID, "ORD-7"))
	require.NoError(t, f.SetField(FieldFinalPrice, "99.5"))
	require.NoError(t, f.SetField(FieldAdvancePaid, "n/a"))
	require.NoError(t, f.SetField("deadline", "friday"))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ORD-7", raw["orderId"])
	assert.Equal(t, 99.5, raw["finalPrice"])
	assert.Equal(t, 99.5, raw["finalTotal"])
	assert.Equal(t, "n/a", raw["advancePaid"])
	assert.Equal(t, "n/a", raw["advancePayment"])
	assert.Equal(t, "friday", raw["deadline"])
	assert.Equal(t, []any{}, raw["orderIntakeFiles"])

	var back FormData
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.FinalPrice)
	assert.True(t, back.FinalPrice.Equal(*f.FinalPrice))
	require.NotNil(t, back.AdvancePaid)
	assert.Equal(t, "n/a", back.AdvancePaid.Raw())
	assert.Equal(t, "friday", back.Extensions["deadline"])
}

func TestFormData_UnmarshalLegacyNames(t *testing.T) {
	var f FormData
	require.NoError(t, json.Unmarshal([]byte(`{"advancePayment": 30, "finalTotal": 120, "finalPrice": null}`), &f))

	require.NotNil(t, f.AdvancePaid)
	assert.Equal(t, "30", f.AdvancePaid.String())
	require.NotNil(t, f.FinalPrice)
	assert.Equal(t, "120", f.FinalPrice.String())
	assert.Nil(t, f.DesignerUploads)
	assert.NotNil(t, f.OrderIntakeFiles)
	assert.NotNil(t, f.InternalComments)
}

func TestFormData_JSONNonFinite(t *testing.T) {
	f := NewFormData()
	require.NoError(t, f.SetField(FieldDiscount, math.NaN()))
	require.NoError(t, f.SetField("ratio", math.Inf(1)))
	require.NoError(t, f.SetField("dims", map[string]any{"w": 10.0, "h": math.NaN()}))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Nil(t, got[FieldDiscount])
	assert.Nil(t, got["ratio"])
	assert.Equal(t, map[string]any{"w": 10.0, "h": nil}, got["dims"])

	// The draft itself keeps what was given.
	assert.True(t, math.IsInf(f.Extensions["ratio"].(float64), 1))
}
