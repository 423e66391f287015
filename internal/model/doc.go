// Package model defines the order draft shared across the order-stage views.
//
// Conventions:
//   - Field names are the camelCase keys used on the wire and in patches
//     (e.g. "finalPrice", "orderIntakeFiles").
//   - Money values are decimal Amounts; input that is not numeric is kept verbatim.
//   - Optional scalars are pointers; nil means the field is absent.
//   - "advancePayment" and "finalTotal" are legacy names. They are not stored,
//     only read through AdvancePayment() / FinalTotal() and mirrored on encode.
package model
