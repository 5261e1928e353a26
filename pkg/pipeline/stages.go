package pipeline

import (
	"fmt"

	"github.com/growthloopio/growthloop/pkg/agent"
	"github.com/growthloopio/growthloop/pkg/ai"
	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/memory"
	"github.com/growthloopio/growthloop/pkg/observability/prometheus"
	"github.com/growthloopio/growthloop/pkg/vibes"
)

const networkerPrompt = `You are a Networking Expert. Your goal is to help the user grow by commenting on OTHER people's posts.
Input: A trend or topic summary.
Output: A "Comment Pack" containing 3 distinct types of comments the user can copy-paste onto relevant posts by influencers.

Types:
1. The "Value Add": Agree with the premise but add a specific example or data point.
2. The "Contrarian": Respectfully disagree or point out a missing nuance.
3. The "Question": Ask a deep, thoughtful question that invites reply.

Format:
### Comment Pack for [Topic]
**1. Value Add:** [Draft]
**2. Contrarian:** [Draft]
**3. Question:** [Draft]`

const criticPrompt = `You are a harsh LinkedIn Critic. Review the draft post.
If it sounds like ChatGPT, say so.
Checklist:
- Is the hook boring?
- Are there too many adjectives?
- Is the formatting scannable?

If you find a recurring mistake, output a line starting with "RULE:" to save it to memory.
Example: "RULE: Never use the word 'unleash'."`

// AgentFactory is the production StageFactory: it builds real
// generation agents over one shared AI client, memory-backed rule
// injection for drafts, and rule extraction for reviews.
type AgentFactory struct {
	client  ai.Client
	mem     *memory.Memory
	metrics *prometheus.Metrics
	logger  logging.Logger
	opts    []agent.Option
}

var _ StageFactory = (*AgentFactory)(nil)

func NewAgentFactory(client ai.Client, mem *memory.Memory, metrics *prometheus.Metrics, logger logging.Logger, opts ...agent.Option) *AgentFactory {
	return &AgentFactory{client: client, mem: mem, metrics: metrics, logger: logger, opts: opts}
}

func (f *AgentFactory) agentOpts() []agent.Option {
	opts := f.opts
	if f.metrics != nil {
		opts = append(opts[:len(opts):len(opts)], agent.WithRetryNotify(func() {
			f.metrics.GenerationRetries.Inc()
		}))
	}
	return opts
}

func (f *AgentFactory) Strategist(v vibes.Vibe, insight string) agent.Stage {
	prompt := fmt.Sprintf("You are a LinkedIn Growth Strategist.\nCurrent Persona: %s\n%s\n\nDATA FEEDBACK: %s", v.Name, v.Strategist, insight)
	return agent.New("Strategist", "Growth Hacker", prompt, f.client, f.logger, f.agentOpts()...)
}

func (f *AgentFactory) Ghostwriter(v vibes.Vibe) agent.Stage {
	prompt := fmt.Sprintf(`You are a viral LinkedIn Creator.
Current Persona: %s
%s
Rules:
1. NO 'In conclusion', 'In summary', 'Delve', 'Crucial', 'Landscape'.
2. Write like a human, not an AI.
3. Max 1500 chars.`, v.Name, v.Ghostwriter)
	writer := agent.New("Ghostwriter", "Content Writer", prompt, f.client, f.logger, f.agentOpts()...)
	return agent.NewGhostwriter(writer, f.mem)
}

func (f *AgentFactory) ArtDirector(v vibes.Vibe) agent.Stage {
	prompt := fmt.Sprintf(`You are a Midjourney/DALL-E Prompt Engineer.
Current Style: %s
%s
STRICT OUTPUT FORMAT (NO CHAT):
Visual Format: [Format]
Prompt: [The Prompt]
Text Overlay: [The Text]`, v.Name, v.ArtDirector)
	return agent.New("ArtDirector", "Visual Creator", prompt, f.client, f.logger, f.agentOpts()...)
}

func (f *AgentFactory) Critic() agent.Stage {
	critic := agent.New("Critic", "Quality Control", criticPrompt, f.client, f.logger, f.agentOpts()...)
	return agent.NewCritic(critic, f.ruleSink(), f.logger)
}

func (f *AgentFactory) Networker() agent.Stage {
	return agent.New("Networker", "Comment Strategist", networkerPrompt, f.client, f.logger, f.agentOpts()...)
}

// ruleSink counts persisted rules alongside writing them to memory.
func (f *AgentFactory) ruleSink() agent.RuleSink {
	if f.metrics == nil {
		return f.mem
	}
	return countingSink{mem: f.mem, metrics: f.metrics}
}

type countingSink struct {
	mem     *memory.Memory
	metrics *prometheus.Metrics
}

func (s countingSink) AddRule(text string) error {
	if err := s.mem.AddRule(text); err != nil {
		return err
	}
	s.metrics.RulesAdded.Inc()
	return nil
}
