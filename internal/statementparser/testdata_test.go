package statementparser

import (
	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
)

const (
	fixtureHeaderRow  = 9
	fixtureDroppedRow = 13
)

// hdfcFixture is a statement laid out like a typical Indian bank export:
// metadata block, ledger, then an explicit summary block.
func hdfcFixture() grid.Grid {
	return grid.FromStrings([][]string{
		{"HDFC BANK LTD"},
		{"M/S. ACME TRADERS PVT LTD", "", "Account Branch : ANDHERI EAST"},
		{"Address : 12 MG ROAD", "", "City : MUMBAI"},
		{"State : MAHARASHTRA", "", "Phone no. : 02212345678"},
		{"Email : accounts@acme.example", "", "Cust ID : 87654321"},
		{"Account No : 5010 0123 4567 89", "", "IFSC : HDFC0001234 MICR : 400240002"},
		{"GSTIN : 27AAACA1234B1Z5", "", "Currency : INR"},
		{"Statement From : 01/03/2024 To : 31/03/2024"},
		{},
		{"Date", "Narration", "Chq./Ref.No.", "Value Dt", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"********", "********"},
		{"05/03/2024", "NEFT-HDFC-ICICI-ABC CORP-XYZ LTD-REF123", "REF123", "05/03/24", "", "50000.00", "125000.00"},
		{"06/03/2024", "UPI-SHOP-9876", "0000", "06/03/24", "1,500.00", "", "123500.00"},
		{"Page total carried forward", "", "", "", "", "", ""},
		{"07/03/2024", "CHQ DEP 123456", "123456", "07/03/24", "", "2,000.00", "125500.00"},
		{"STATEMENT SUMMARY :-"},
		{"Opening Balance", "75000.00", "Dr Count", "1", "Cr Count", "2"},
		{"Debits", "1500.00", "Credits", "52000.00", "Closing Bal", "125500.00"},
	})
}

func newTestParser() *Parser {
	return NewParser(DefaultOptions(), logging.NewMockLogger())
}
