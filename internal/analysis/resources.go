package analysis

var resourceCatalog = map[UrgencyLevel][]string{
	UrgencyCrisis: {
		"**National Suicide Prevention Lifeline (US)**: Call or text 988 (24/7)",
		"**Crisis Text Line**: Text HOME to 741741 (24/7)",
		"**International Association for Suicide Prevention**: https://www.iasp.info/resources/Crisis_Centres/",
		"**Emergency Services**: 911 (US) or your local emergency number",
	},
	UrgencyConcern: {
		"**SAMHSA National Helpline (US)**: 1-800-662-HELP (4357) (24/7)",
		"**7 Cups (free online therapy)**: https://www.7cups.com",
		"**BetterHelp Online Therapy**: https://www.betterhelp.com",
	},
	UrgencyNone: {
		"**Anxiety and Depression Association of America**: https://adaa.org",
		"**Psychology Today Therapist Finder**: https://www.psychologytoday.com",
		"**CBT Worksheets (Free)**: https://www.psychologytools.com/self-help/",
	},
}

// ResourcesFor returns a copy of the support resources for an urgency tier.
// The none tier maps to general self-help material.
func ResourcesFor(level UrgencyLevel) []string {
	src := resourceCatalog[level]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
