// Package categories provides test infrastructure for seeding categories.
// It offers a fluent, type-safe API so tests never depend on categories
// that were not explicitly created.
//
// # Basic Usage
//
// The simplest way to set up a test with categories:
//
//	func TestMyFeature(t *testing.T) {
//		db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//			return b.WithBasicCategories()
//		})
//
//		// Use db.Storage for your test...
//	}
//
// # Using Fixtures
//
// Fixtures provide consistent category sets:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureStandard)
//	})
//
// # Custom Categories
//
// Add specific categories for your test:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.
//			WithBasicCategories().
//			WithCategory("Special Category").
//			WithCategories("Cat A", "Cat B")
//	})
//
//	groceries := db.Categories.MustFind(t, categories.CategoryGroceries)
//
// Each test gets its own isolated in-memory database, so parallel tests
// never observe each other's categories.
package categories
