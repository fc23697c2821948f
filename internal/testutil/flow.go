package testutil

// DefaultFlowToken is the flow token used when a scenario does not set one.
const DefaultFlowToken = "test-flow-default"

// ScenarioFlowGenerator hands out one flow token for every call of a
// scenario, so all steps of a run share a flow and golden traces stay
// byte-identical across runs.
//
// Unlike engine.FixedGenerator, which walks a list of tokens and panics when
// it runs out, this generator never advances.
//
// Stateless after construction and safe for concurrent use.
type ScenarioFlowGenerator struct {
	token string
}

// NewScenarioFlowGenerator returns a generator for token, or for
// DefaultFlowToken when token is empty.
func NewScenarioFlowGenerator(token string) *ScenarioFlowGenerator {
	return &ScenarioFlowGenerator{token: FlowTokenOrDefault(token)}
}

// Generate returns the scenario's flow token.
//
// Implements engine.FlowTokenGenerator.
func (g *ScenarioFlowGenerator) Generate() string {
	return g.token
}

// FlowTokenOrDefault returns token, or DefaultFlowToken when token is empty.
func FlowTokenOrDefault(token string) string {
	if token == "" {
		return DefaultFlowToken
	}
	return token
}
