package nodes

// User-facing dialogue text. Wording is part of the conversational contract:
// tests and downstream consumers match on these strings, so changes here are
// behaviour changes.
const (
	GreetingMessage = "Hello! I am an invoice status chatbot. " +
		"I can help you with the status of your PO and NON PO (ACR) invoices. " +
		"I can provide the status for a maximum of 50 invoices in one interaction. " +
		"How can I help you today?"

	ClarifyIntentMessage = "I'm sorry, I'm not sure what you're asking. " +
		"Are you enquiring about PO or NON PO(ACR) based invoices?"

	AskPODetailsMessage = "Please provide the PO Number and the Invoice Number. " +
		"Also, let me know if you want to check the status of all invoices for the given PO."

	AskNonPODetailsMessage = "Please provide either the ACR or Invoice Number, " +
		"and the Invoice Document Date (in YYYY-MM-DD format) for up to 50 invoices. " +
		"Please provide the details in a comma-separated format."

	MissingPODetailsMessage = "I seem to be missing some details. " +
		"Please provide both the PO Number and Invoice Number."

	RetryPODetailsMessage = "I'm sorry, I had trouble understanding the details. " +
		"Could you please provide them again clearly?"

	RetryNonPODetailsMessage = "I'm sorry, I had trouble understanding the details. " +
		"Could you please provide them again clearly in the requested format?"

	StatusTableIntro = "Here is the status of your invoice(s):"

	InvoiceNotFoundMessage = "The requested invoice was not found. " +
		"Please check the details and try again, or try again tomorrow."

	AskSatisfactionMessage = "Are you satisfied with the information provided? (Yes/No)"

	FeedbackCollectedMessage = "Thank you. I have collected your details."

	CannotCreateTicketMessage = "I am missing some of your details and cannot create a ticket. " +
		"Please start over."

	TicketCreationFailedMessage = "I am unable to create a ticket right now. Please try again later."

	GoodbyeMessage = "Thank you for using the invoice agent. Goodbye!"

	// TicketReason is the fixed dissatisfaction reason attached to every
	// escalation ticket.
	TicketReason = "User not satisfied with invoice status response."
)
