package statementparser

import (
	"regexp"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/normalize"
)

// metadataSetter applies one extracted field to the metadata.
type metadataSetter func(md *models.StatementMetadata)

// metadataMatcher inspects one row and returns a setter when its field is
// present. A false result means "no match" and is never an error.
type metadataMatcher func(row grid.Row, joined string) (metadataSetter, bool)

// bankPattern maps a bank-name substring to its canonical name. Longer
// names come before the short codes they contain.
type bankPattern struct {
	pattern   *regexp.Regexp
	canonical string
}

var bankPatterns = []bankPattern{
	{regexp.MustCompile(`hdfc bank`), "HDFC Bank"},
	{regexp.MustCompile(`icici bank`), "ICICI Bank"},
	{regexp.MustCompile(`state bank of india`), "State Bank of India"},
	{regexp.MustCompile(`axis bank`), "Axis Bank"},
	{regexp.MustCompile(`kotak mahindra`), "Kotak Mahindra Bank"},
	{regexp.MustCompile(`punjab national bank`), "Punjab National Bank"},
	{regexp.MustCompile(`bank of baroda`), "Bank of Baroda"},
	{regexp.MustCompile(`canara bank`), "Canara Bank"},
	{regexp.MustCompile(`union bank of india`), "Union Bank of India"},
	{regexp.MustCompile(`central bank of india`), "Central Bank of India"},
	{regexp.MustCompile(`indian overseas bank`), "Indian Overseas Bank"},
	{regexp.MustCompile(`bank of india`), "Bank of India"},
	{regexp.MustCompile(`indusind`), "IndusInd Bank"},
	{regexp.MustCompile(`yes bank`), "Yes Bank"},
	{regexp.MustCompile(`idfc first`), "IDFC First Bank"},
	{regexp.MustCompile(`idbi bank`), "IDBI Bank"},
	{regexp.MustCompile(`federal bank`), "Federal Bank"},
	{regexp.MustCompile(`indian bank`), "Indian Bank"},
	{regexp.MustCompile(`\bhdfc\b`), "HDFC Bank"},
	{regexp.MustCompile(`\bicici\b`), "ICICI Bank"},
	{regexp.MustCompile(`\bsbi\b`), "State Bank of India"},
	{regexp.MustCompile(`\bkotak\b`), "Kotak Mahindra Bank"},
	{regexp.MustCompile(`\bpnb\b`), "Punjab National Bank"},
}

var (
	holderPrefix   = regexp.MustCompile(`(?i)m/s\.?\s*(.*)`)
	holderLabel    = regexp.MustCompile(`(?i)(?:a/c|account)\s*holder(?:'?s)?(?:\s*name)?\s*[:\-]?\s*(.*)`)
	accountLabel   = regexp.MustCompile(`(?i)(?:account\s*(?:no|number)|a/c\s*no)\.?\s*[:\-]?\s*(.*)`)
	digitRun       = regexp.MustCompile(`\d(?:[\d ]*\d)?`)
	periodPattern  = regexp.MustCompile(`\bfrom\b\s*:?\s*(.+?)\s+\bto\b\s*:?\s*(.+)`)
	ifscLabel      = regexp.MustCompile(`(?i)ifsc(?:\s*code)?\s*[:\-]?\s*(.*)`)
	ifscStrict     = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	ifscLoose      = regexp.MustCompile(`\b[A-Z0-9]{11}\b`)
	micrLabel      = regexp.MustCompile(`(?i)micr(?:\s*code)?\s*[:\-]?\s*(.*)`)
	micrCode       = regexp.MustCompile(`\b\d{9}\b`)
	customerLabel  = regexp.MustCompile(`(?i)(?:customer|cust)\.?\s*(?:id|no)\.?\s*[:\-]?\s*(.*)`)
	customerDigits = regexp.MustCompile(`\d{4,}`)
	gstinLabel     = regexp.MustCompile(`(?i)gst(?:in|\s*no)\.?\s*[:\-]?\s*(.*)`)
	gstinCode      = regexp.MustCompile(`\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]`)
	branchLabel    = regexp.MustCompile(`(?i)(?:^|[^a-z])branch(?:\s*name)?\s*:\s*(.*)`)
	addressLabel   = regexp.MustCompile(`(?i)\baddress\s*:\s*(.*)`)
	cityLabel      = regexp.MustCompile(`(?i)\bcity\s*:\s*(.*)`)
	stateLabel     = regexp.MustCompile(`(?i)\bstate\s*:\s*(.*)`)
	phoneLabel     = regexp.MustCompile(`(?i)\bphone\s*(?:no\.?)?\s*:\s*(.*)`)
	emailLabel     = regexp.MustCompile(`(?i)\be-?mail(?:\s*id)?\s*:\s*(.*)`)
	currencyLabel  = regexp.MustCompile(`(?i)\bcurrency\s*:?\s*([A-Za-z]{3})\b`)
	generatedOn    = regexp.MustCompile(`(?i)generated\s*on\s*:?\s*(.*)`)
	generatedBy    = regexp.MustCompile(`(?i)generated\s*by\s*:?\s*(.*)`)
	requesting     = regexp.MustCompile(`(?i)requesting\s*branch(?:\s*code)?\s*:?\s*(.*)`)
	pageLabel      = regexp.MustCompile(`(?i)\bpage\s*(?:no\.?|number)?\s*:?\s*(\d+)`)
	statementType  = regexp.MustCompile(`(?i)statement\s*type\s*:?\s*(.*)`)
)

// metadataMatchers run in this order on every scanned row.
var metadataMatchers = []metadataMatcher{
	matchBankName,
	matchAccountHolder,
	matchAccountNumber,
	matchPeriod,
	matchIFSC,
	matchMICR,
	matchCustomerID,
	matchGSTIN,
	matchBranch,
	labelledText(addressLabel, func(md *models.StatementMetadata, v string) { md.Address = v }),
	labelledText(cityLabel, func(md *models.StatementMetadata, v string) { md.City = v }),
	labelledText(stateLabel, func(md *models.StatementMetadata, v string) { md.State = v }),
	labelledText(phoneLabel, func(md *models.StatementMetadata, v string) { md.Phone = v }),
	labelledText(emailLabel, func(md *models.StatementMetadata, v string) { md.Email = v }),
	labelledText(generatedOn, func(md *models.StatementMetadata, v string) { md.GeneratedOn = v }),
	labelledText(generatedBy, func(md *models.StatementMetadata, v string) { md.GeneratedBy = v }),
	labelledText(requesting, func(md *models.StatementMetadata, v string) { md.RequestingBranch = v }),
	labelledText(pageLabel, func(md *models.StatementMetadata, v string) { md.PageNumber = v }),
	labelledText(statementType, func(md *models.StatementMetadata, v string) { md.StatementType = v }),
	matchCurrency,
}

// ExtractMetadata scans the rows above the transaction header, at most
// MetadataScanRows of them, and applies every matcher to each row.
func (p *Parser) ExtractMetadata(g grid.Grid) models.StatementMetadata {
	md := models.NewStatementMetadata(p.opts.DefaultCurrency)

	for i, row := range g {
		if i >= p.opts.MetadataScanRows {
			break
		}
		joined := row.Joined()
		if isHeaderRow(joined) {
			break
		}
		for _, match := range metadataMatchers {
			if set, ok := match(row, joined); ok {
				set(&md)
			}
		}
	}
	return md
}

// BankNameFrom returns the canonical bank name mentioned in text.
func BankNameFrom(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, bp := range bankPatterns {
		if bp.pattern.MatchString(lower) {
			return bp.canonical, true
		}
	}
	return "", false
}

// matchBankName only fills the default bank name: the first detection wins.
func matchBankName(_ grid.Row, joined string) (metadataSetter, bool) {
	name, ok := BankNameFrom(joined)
	if !ok {
		return nil, false
	}
	return func(md *models.StatementMetadata) {
		if md.BankName == models.DefaultBankName {
			md.BankName = name
		}
	}, true
}

func matchAccountHolder(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "m/s.") && !strings.Contains(joined, "a/c holder") &&
		!strings.Contains(joined, "account holder") {
		return nil, false
	}
	for i, cell := range row {
		text := cell.String()
		lower := strings.ToLower(text)
		var value string
		switch {
		case strings.Contains(lower, "m/s."):
			value = holderPrefix.FindStringSubmatch(text)[1]
		case holderLabel.MatchString(text):
			value = holderLabel.FindStringSubmatch(text)[1]
		default:
			continue
		}
		value = cleanValue(value)
		if value == "" {
			value = cleanValue(nextText(row, i))
		}
		if value == "" {
			continue
		}
		return func(md *models.StatementMetadata) { md.AccountHolder = value }, true
	}
	return nil, false
}

func matchAccountNumber(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "account no") && !strings.Contains(joined, "account number") &&
		!strings.Contains(joined, "a/c no") {
		return nil, false
	}
	for i, cell := range row {
		m := accountLabel.FindStringSubmatch(cell.String())
		if m == nil {
			continue
		}
		number := longestDigitRun(m[1])
		if number == "" {
			number = longestDigitRun(nextText(row, i))
		}
		if number != "" {
			return func(md *models.StatementMetadata) { md.AccountNumber = number }, true
		}
	}
	return nil, false
}

func matchPeriod(_ grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "statement from") &&
		!(strings.Contains(joined, "from") && strings.Contains(joined, "to")) {
		return nil, false
	}
	m := periodPattern.FindStringSubmatch(joined)
	if m == nil {
		return nil, false
	}
	from, fromOK := leadingDate(m[1])
	to, toOK := leadingDate(m[2])
	if !fromOK && !toOK {
		return nil, false
	}
	return func(md *models.StatementMetadata) {
		if fromOK {
			md.PeriodFrom = from
		}
		if toOK {
			md.PeriodTo = to
		}
	}, true
}

func matchIFSC(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "ifsc") {
		return nil, false
	}
	code, ok := labelledCode(row, ifscLabel, func(s string) string {
		s = strings.ToUpper(s)
		if c := ifscStrict.FindString(s); c != "" {
			return c
		}
		for _, c := range ifscLoose.FindAllString(s, -1) {
			if strings.ContainsAny(c, "0123456789") && strings.ContainsAny(c, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
				return c
			}
		}
		return ""
	})
	if !ok {
		return nil, false
	}
	return func(md *models.StatementMetadata) { md.IFSC = code }, true
}

func matchMICR(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "micr") {
		return nil, false
	}
	code, ok := labelledCode(row, micrLabel, micrCode.FindString)
	if !ok {
		return nil, false
	}
	return func(md *models.StatementMetadata) { md.MICR = code }, true
}

func matchCustomerID(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "customer") && !strings.Contains(joined, "cust") {
		return nil, false
	}
	code, ok := labelledCode(row, customerLabel, customerDigits.FindString)
	if !ok {
		return nil, false
	}
	return func(md *models.StatementMetadata) { md.CustomerID = code }, true
}

func matchGSTIN(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "gst") {
		return nil, false
	}
	code, ok := labelledCode(row, gstinLabel, func(s string) string {
		return gstinCode.FindString(strings.ToUpper(s))
	})
	if !ok {
		return nil, false
	}
	return func(md *models.StatementMetadata) { md.GSTIN = code }, true
}

func matchBranch(row grid.Row, joined string) (metadataSetter, bool) {
	if !strings.Contains(joined, "branch") {
		return nil, false
	}
	for i, cell := range row {
		text := cell.String()
		if strings.Contains(strings.ToLower(text), "requesting") {
			continue
		}
		m := branchLabel.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := cleanValue(m[1])
		if value == "" {
			value = cleanValue(nextText(row, i))
		}
		if value != "" {
			return func(md *models.StatementMetadata) { md.Branch = value }, true
		}
	}
	return nil, false
}

func matchCurrency(row grid.Row, _ string) (metadataSetter, bool) {
	for _, cell := range row {
		if m := currencyLabel.FindStringSubmatch(cell.String()); m != nil {
			code := strings.ToUpper(m[1])
			return func(md *models.StatementMetadata) { md.Currency = code }, true
		}
	}
	return nil, false
}

// labelledText builds a matcher for a "Label : value" cell. An empty value
// is taken from the next non-empty cell.
func labelledText(label *regexp.Regexp, set func(*models.StatementMetadata, string)) metadataMatcher {
	return func(row grid.Row, _ string) (metadataSetter, bool) {
		for i, cell := range row {
			m := label.FindStringSubmatch(cell.String())
			if m == nil {
				continue
			}
			value := cleanValue(m[len(m)-1])
			if value == "" {
				value = cleanValue(nextText(row, i))
			}
			if value == "" {
				continue
			}
			return func(md *models.StatementMetadata) { set(md, value) }, true
		}
		return nil, false
	}
}

// labelledCode finds the first cell matching label and extracts a code from
// the text after the label, or from the next non-empty cell.
func labelledCode(row grid.Row, label *regexp.Regexp, extract func(string) string) (string, bool) {
	for i, cell := range row {
		m := label.FindStringSubmatch(cell.String())
		if m == nil {
			continue
		}
		if code := extract(m[1]); code != "" {
			return code, true
		}
		if code := extract(nextText(row, i)); code != "" {
			return code, true
		}
	}
	return "", false
}

// leadingDate parses the longest date made of the first one to three
// whitespace-separated tokens of s.
func leadingDate(s string) (time.Time, bool) {
	tokens := strings.Fields(s)
	n := len(tokens)
	if n > 3 {
		n = 3
	}
	for ; n > 0; n-- {
		candidate := strings.TrimRight(strings.Join(tokens[:n], " "), ",;")
		if t, ok := normalize.DateString(candidate); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func longestDigitRun(s string) string {
	longest := ""
	for _, run := range digitRun.FindAllString(s, -1) {
		run = strings.ReplaceAll(run, " ", "")
		if len(run) > len(longest) {
			longest = run
		}
	}
	return longest
}

func nextText(row grid.Row, i int) string {
	for j := i + 1; j < len(row); j++ {
		if s := row[j].String(); s != "" {
			return s
		}
	}
	return ""
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ":-,"))
}
