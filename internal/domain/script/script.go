// Package script provides the terminal script played by the sequencer.
package script

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Entry is one typed prompt and the response printed after it.
type Entry struct {
	Prompt   string `yaml:"prompt" validate:"required"`
	Response string `yaml:"response"`
}

// Closing is the static line appended to the log once every entry has run.
type Closing struct {
	Command  string `yaml:"command" validate:"required"`
	Response string `yaml:"response"`
}

// Script is the ordered list of entries plus the closing line.
type Script struct {
	Entries []Entry `yaml:"entries" validate:"required,min=1,dive"`
	Closing Closing `yaml:"closing"`
}

// Len returns the number of entries.
func (s Script) Len() int {
	return len(s.Entries)
}

// Validate checks that the script can be played.
func (s Script) Validate() error {
	if len(s.Entries) == 0 {
		return errors.New("script has no entries")
	}
	for i, e := range s.Entries {
		if strings.TrimSpace(e.Prompt) == "" {
			return errors.Newf("script entry %d: prompt is empty", i)
		}
	}
	if strings.TrimSpace(s.Closing.Command) == "" {
		return errors.New("script closing command is empty")
	}
	return nil
}

// New builds a script from parallel prompt and response lists.
func New(prompts, responses []string, closing Closing) (Script, error) {
	if len(prompts) != len(responses) {
		return Script{}, errors.Newf("prompts (%d) and responses (%d) differ in length", len(prompts), len(responses))
	}
	s := Script{Entries: make([]Entry, len(prompts)), Closing: closing}
	for i := range prompts {
		s.Entries[i] = Entry{Prompt: prompts[i], Response: responses[i]}
	}
	return s, s.Validate()
}

// Default returns the stock portfolio script.
func Default() Script {
	return Script{
		Entries: []Entry{
			{Prompt: "whoami", Response: "rogue@cybersecurity:~$"},
			{Prompt: "cat profile.txt", Response: "Penetration Tester | Bug Hunter | Exploit Developer | Python Programmer | Top 1% in TryHackMe | CTF Player"},
			{Prompt: "ls -la projects/", Response: "Defense-Sphere.py  Xylem-Network.py  C2C-Malware.py  Password-Manager.py  Ransomware.py"},
			{Prompt: "sudo access --grant-all", Response: "Access granted. Welcome to my portfolio."},
		},
		Closing: Closing{
			Command:  `echo "Explore my portfolio below"`,
			Response: "Explore my portfolio below",
		},
	}
}
