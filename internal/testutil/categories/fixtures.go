package categories

// Fixture represents a predefined set of categories for testing.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string

	// Description returns a detailed description of the fixture's purpose.
	Description() string

	// Categories returns the category names included in this fixture.
	Categories() []CategoryName
}

// fixture implements the Fixture interface.
type fixture struct {
	name        string
	description string
	categories  []CategoryName
}

func (f *fixture) Name() string               { return f.name }
func (f *fixture) Description() string        { return f.description }
func (f *fixture) Categories() []CategoryName { return f.categories }

// Predefined fixtures for common test scenarios.
var (
	// FixtureMinimal provides the absolute minimum categories for basic tests.
	FixtureMinimal = &fixture{
		name:        "Minimal",
		description: "Minimal category set for simple unit tests",
		categories: []CategoryName{
			CategoryDining,
			CategoryGroceries,
			CategoryShopping,
		},
	}

	// FixtureStandard provides a standard set of categories for most tests.
	FixtureStandard = &fixture{
		name:        "Standard",
		description: "Standard category set covering common transaction types",
		categories: []CategoryName{
			CategoryDining,
			CategoryGroceries,
			CategoryShopping,
			CategoryElectronics,
			CategoryEntertainment,
			CategoryTransport,
			CategorySubscriptions,
			CategoryUtilities,
			CategoryTravel,
			CategoryHealth,
		},
	}

	// FixtureTestingOnly provides generic categories for test-specific scenarios.
	FixtureTestingOnly = &fixture{
		name:        "TestingOnly",
		description: "Generic categories for testing state transitions and edge cases",
		categories: []CategoryName{
			CategoryTest1,
			CategoryTest2,
			CategoryInitial,
			CategoryReassigned,
		},
	}
)
