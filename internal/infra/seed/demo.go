package seed

import (
	"context"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// DemoSource serves the built-in starter corpus.
type DemoSource struct{}

// NewDemoSource constructs the source.
func NewDemoSource() DemoSource {
	return DemoSource{}
}

// Load returns a fresh copy of the demo FAQs.
func (DemoSource) Load(context.Context) ([]faq.FAQ, error) {
	return []faq.FAQ{
		{
			ID:       "1",
			Question: "How do I reset my password?",
			Answer:   `Click "Forgot Password" on the login page. Enter your email and we'll send you a reset link within 5 minutes.`,
			Category: "account",
		},
		{
			ID:       "2",
			Question: "What payment methods do you accept?",
			Answer:   "We accept Visa, Mastercard, American Express, PayPal, and Apple Pay. All transactions are encrypted and secure.",
			Category: "billing",
		},
		{
			ID:       "3",
			Question: "How long does shipping take?",
			Answer:   "Standard shipping takes 3-5 business days. Express shipping (1-2 days) is available for $15 extra.",
			Category: "shipping",
		},
		{
			ID:       "4",
			Question: "Can I cancel my order?",
			Answer:   "Yes, you can cancel within 24 hours of ordering. Go to My Orders and click Cancel. Refunds take 5-7 business days.",
			Category: "orders",
		},
		{
			ID:       "5",
			Question: "What is your return policy?",
			Answer:   "Items can be returned within 30 days of delivery. Products must be unused and in original packaging. Return shipping is free.",
			Category: "returns",
		},
	}, nil
}

var _ faq.SeedSource = DemoSource{}
