// Package orderstore holds the in-progress order draft shared by the
// order-stage views.
//
// Every update goes through the same pipeline:
//  1. compute the raw patch (from a value or from the current draft)
//  2. propagate legacy aliases (finalPrice/finalTotal, advancePaid/advancePayment)
//  3. coerce numeric fields; unparseable input passes through untouched
//  4. shallow-merge the patch over the draft (containers are replaced)
//
// After every mutation the whole draft is written to its storage slot as
// {"state":{"formData":...},"version":2}. Loading an older version backfills
// the designerUploads container.
package orderstore
