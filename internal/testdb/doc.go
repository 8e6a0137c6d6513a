//go:build integration

// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests run inside a transaction that is rolled back when the test
// completes, so they can share one migrated database and run with
// t.Parallel():
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDB(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresMemoryItemStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Tests are skipped when RECALL_TEST_DATABASE_URL is not set.
package testdb
