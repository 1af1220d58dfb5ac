package progress

// Message is one status line shown while a backend call is in flight.
type Message struct {
	Text   string
	Author string
}

var messagesByMood = map[string][]Message{
	"planning": {
		{"A good plan names what will not be built.", "Design review notes"},
		{"Interfaces first, implementations second.", "Architecture guild"},
	},
	"implementation": {
		{"Small functions, explicit errors, no surprises.", "Code style guide"},
		{"Make it work, then make it clear.", "Pairing session"},
	},
	"testing": {
		{"A failing check now is cheaper than a bug report later.", "QA handbook"},
		{"Syntax first; semantics are the reviewer's job.", "Build pipeline"},
	},
	"review": {
		{"Review the change, not the author.", "Review etiquette"},
		{"Every comment should point to a concrete line.", "Review etiquette"},
	},
	"improvement": {
		{"Address each finding or say why not.", "Review etiquette"},
		{"Refactor with the tests still green.", "Pairing session"},
	},
	"validation": {
		{"Done means checked, not just written.", "Release checklist"},
	},
	"general": {
		{"Open tools keep the craft in the hands of the people doing it.", "Maintainers' notes"},
		{"Local first, cloud when it pays off.", "Routing notes"},
		{"The cheapest call is the one you route well.", "Routing notes"},
		{"Knowledge shared is knowledge multiplied.", "Community wiki"},
	},
}

// MessagesFor returns the messages for a mood followed by the general ones.
// Unknown moods get the general messages only.
func MessagesFor(mood string) []Message {
	general := messagesByMood["general"]
	specific := messagesByMood[mood]
	if mood == "general" {
		specific = nil
	}
	out := make([]Message, 0, len(specific)+len(general))
	out = append(out, specific...)
	return append(out, general...)
}
