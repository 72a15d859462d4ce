// Package customers declares the customer tools.
//
// Responses from these tools carry personal data. They are marked
// sensitive so that, with anonymization enabled, emails, phone numbers,
// names and addresses are redacted before the result reaches the client.
package customers
