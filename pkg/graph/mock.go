package graph

import "github.com/OFFIS-RIT/stormgraph/pkg/common"

// MockDocID is used by the mock dataset when no fragment names a document.
const MockDocID = "doc-mock"

// MockExtraction returns the fixed dataset used while extraction is disabled.
// The result is marked with Mock so it is never mistaken for real output.
func MockExtraction(fragments []common.Fragment) common.ExtractionOutput {
	docID := MockDocID
	if len(fragments) > 0 {
		docID = fragments[0].DocID
	}
	at := func(page, start, end int) common.SourceAnchor {
		return common.SourceAnchor{DocID: docID, Page: page, Span: [2]int{start, end}}
	}

	return common.ExtractionOutput{
		Mock: true,
		Aggregates: []common.Aggregate{
			{Name: "Order", Description: "Customer order aggregate", Confidence: 0.85, Source: at(1, 0, 100)},
			{Name: "Customer", Description: "Customer entity", Confidence: 0.80, Source: at(1, 100, 200)},
			{Name: "Payment", Description: "Payment processing aggregate", Confidence: 0.75, Source: at(2, 0, 150)},
		},
		Commands: []common.Command{
			{Name: "CreateOrder", Intent: common.IntentCreate, Preconditions: []string{"Customer must exist"}, Confidence: 0.80, Source: at(1, 200, 300)},
			{Name: "ProcessPayment", Intent: common.IntentUpdate, Preconditions: []string{"Order must be confirmed"}, Confidence: 0.75, Source: at(2, 150, 250)},
			{Name: "ShipOrder", Intent: common.IntentUpdate, Preconditions: []string{"Payment completed"}, Confidence: 0.78, Source: at(3, 0, 100)},
		},
		Events: []common.Event{
			{Name: "OrderCreated", SchemaHint: map[string]string{"orderId": "string", "customerId": "string"}, Confidence: 0.82, Source: at(1, 300, 400)},
			{Name: "PaymentProcessed", SchemaHint: map[string]string{"paymentId": "string", "amount": "number"}, Confidence: 0.80, Source: at(2, 250, 350)},
			{Name: "OrderShipped", SchemaHint: map[string]string{"orderId": "string", "trackingNumber": "string"}, Confidence: 0.85, Source: at(3, 100, 200)},
		},
		Policies: []common.Policy{
			{Name: "NotifyCustomerOnOrderCreation", Type: common.PolicyProcess, Condition: "When OrderCreated then send notification", Confidence: 0.70, Source: at(1, 400, 500)},
			{Name: "ShipOrderWhenPaymentCompleted", Type: common.PolicySaga, Condition: "When PaymentProcessed then ShipOrder", Confidence: 0.75, Source: at(2, 350, 450)},
		},
	}
}
