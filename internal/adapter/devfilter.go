package adapter

import "regexp"

// Relevance filter: adapters call IsDevRole on every title before emitting a
// posting, so non-software roles never reach the merge store.

var softwareSignalsRe = regexp.MustCompile(`(?i)\b(software|front[\s-]?end|back[\s-]?end|full[\s-]?stack|web|mobile|cloud|platform|devops|sre|qa|test|quality|data|ml|ai|application|apps?)\b`)

var langFrameworksRe = regexp.MustCompile(`(?i)\b(typescript|javascript|react(\s+native)?|next\.?js|node\.?js?|python|java|kotlin|scala|go|golang|rust|c\+\+|c#|\.net|php|ruby|rails|django|spring|swift|objective[\s-]?c|angular|vue|svelte|flutter)\b`)

var roleWordsRe = regexp.MustCompile(`(?i)\b(dev(eloper|ops)?|engineer(ing)?|programmer|architect|sre|qa|tester|sde|swe)\b`)

// nonDevExclusions reject classic hardware/physical-engineering titles early,
// unless a software signal is also present.
var nonDevExclusions = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(power|electrical|electronics?|rf|analog|mixed[\s-]?signal|mechanical|civil|structural|chemical|biomedical|materials?|industrial|process|manufacturing|hvac|petroleum|mining|nuclear|aerospace|automotive|flight test)\b`),
	regexp.MustCompile(`(?i)\b(hardware|pcb|pcba|board\s*layout|asic|fpga|vlsi|rtl|semiconductor|verilog|vhdl|emc|emi)\b`),
}

// IsDevRole reports whether a job title describes a software-development
// role. A role word alone is not enough: it must pair with a software signal
// or a named language/framework, and hardware-domain exclusions veto unless a
// software signal co-occurs.
func IsDevRole(title string) bool {
	if title == "" {
		return false
	}

	hasSoftware := softwareSignalsRe.MatchString(title)
	for _, ex := range nonDevExclusions {
		if ex.MatchString(title) && !hasSoftware {
			return false
		}
	}

	if langFrameworksRe.MatchString(title) {
		return true
	}
	return roleWordsRe.MatchString(title) && hasSoftware
}
