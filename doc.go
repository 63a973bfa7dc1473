// Package ShowcaseDB exercises an embedded analytical database end to
// end: schema management, seeded fixture data, transactional order
// processing with audited writes, analytical reporting, versioned SQL
// backups, and catalog-driven schema documentation.
//
// # Quick Start
//
// Open an in-memory database and run the showcase operations:
//
//	st, _ := store.NewMemoryStore()
//	defer st.Close()
//	st.Setup(context.Background())
//
//	instance := ShowcaseDB.Open(st)
//	instance.Seeder(42).Generate(context.Background(), 50, 100)
//
//	order, err := instance.Orders().Place(context.Background(), userID, []core.LineItem{
//		{ProductID: 1, Quantity: 2},
//	})
//
// Orders run in a single transaction: line items are validated against
// live stock, prices are captured at purchase time, stock is
// decremented, and an audit entry is written. Any failure rolls the
// whole order back.
//
// Backups serialize the database to a replayable SQL script:
//
//	var buf bytes.Buffer
//	instance.Dumper().Dump(context.Background(), &buf)
//
// Dumps can also be versioned in a git-backed vault with tagged
// snapshots, or written to local files and S3 objects.
package ShowcaseDB
