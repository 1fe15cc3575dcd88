package analyzers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// MockUniversalAnalyzer is a testify mock for the UniversalAnalyzer interface.
type MockUniversalAnalyzer struct {
	mock.Mock
}

var _ contract.UniversalAnalyzer = &MockUniversalAnalyzer{} // Compile-time check

// Analyze implements the UniversalAnalyzer interface.
func (m *MockUniversalAnalyzer) Analyze(ctx context.Context, filePath string) (schema.LineCounts, error) {
	ret := m.Called(ctx, filePath)
	counts, _ := ret.Get(0).(schema.LineCounts)
	return counts, ret.Error(1)
}

// MockDeepAnalyzer is a testify mock for the DeepAnalyzer interface.
type MockDeepAnalyzer struct {
	mock.Mock
}

var _ contract.DeepAnalyzer = &MockDeepAnalyzer{} // Compile-time check

// Analyze implements the DeepAnalyzer interface.
func (m *MockDeepAnalyzer) Analyze(ctx context.Context, filePath string, functions bool) schema.DeepOutcome {
	ret := m.Called(ctx, filePath, functions)
	outcome, _ := ret.Get(0).(schema.DeepOutcome)
	return outcome
}

// MockLintAnalyzer is a testify mock for the LintAnalyzer interface.
type MockLintAnalyzer struct {
	mock.Mock
}

var _ contract.LintAnalyzer = &MockLintAnalyzer{} // Compile-time check

// Analyze implements the LintAnalyzer interface.
func (m *MockLintAnalyzer) Analyze(ctx context.Context, modulePath string, details bool) (schema.ModuleQuality, error) {
	ret := m.Called(ctx, modulePath, details)
	quality, _ := ret.Get(0).(schema.ModuleQuality)
	return quality, ret.Error(1)
}
