package validator

// Severity grades a finding. Warnings are surfaced but never fail a verdict.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Finding is one (severity, message) validation result.
type Finding struct {
	Severity Severity
	Message  string
}

// Verdict aggregates one validation run. Findings keep check-execution order.
type Verdict struct {
	IsValid  bool
	Findings []Finding
}

// Errors returns only the error-severity findings.
func (v Verdict) Errors() []Finding {
	var out []Finding
	for _, f := range v.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the warning-severity findings.
func (v Verdict) Warnings() []Finding {
	var out []Finding
	for _, f := range v.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

func warning(msg string) Finding { return Finding{Severity: SeverityWarning, Message: msg} }
func errorf(msg string) Finding  { return Finding{Severity: SeverityError, Message: msg} }
