package migrate

import (
	"context"

	"college-erp/internal/fees"
	"college-erp/internal/student"

	"github.com/uptrace/bun"
)

// Default builds the standing migration set. Ordering matters: address
// and totals backfills run before linkage sync, and missing ledger rows
// are created last so they pick up synced course fees.
func Default(db *bun.DB, students student.Repository, ledger fees.Service) []Migration {
	return []Migration{
		renameDropoutStatus(db),
		backfillConcatenatedAddress(db),
		backfillDerivedTotals(db, ledger),
		syncCourseLinkage(db, students, ledger),
		syncTotalCourseFees(db, ledger),
		ensureLedgerRows(students, ledger),
	}
}

// renameDropoutStatus folds the legacy dropout_status column into
// student_status. Satisfied once the legacy column is gone.
func renameDropoutStatus(db *bun.DB) Migration {
	legacyExists := func(ctx context.Context) (bool, error) {
		n, err := db.NewSelect().
			Table("information_schema.columns").
			Where("table_name = ?", "students").
			Where("column_name = ?", "dropout_status").
			Count(ctx)
		return n > 0, err
	}

	return Migration{
		Name: "rename_dropout_status",
		Probe: func(ctx context.Context) (bool, error) {
			exists, err := legacyExists(ctx)
			return !exists, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			// student_status already exists on current schemas, so copy
			// the legacy values across and drop the old column instead
			// of a blind rename.
			_, err := db.ExecContext(ctx,
				`UPDATE students SET student_status = dropout_status
				 WHERE COALESCE(dropout_status, '') <> ''
				   AND COALESCE(student_status, '') = ''`)
			if err != nil {
				return nil, err
			}
			if _, err := db.ExecContext(ctx,
				`ALTER TABLE students DROP COLUMN dropout_status`); err != nil {
				return nil, err
			}
			return &Report{Before: 1, After: 0}, nil
		},
	}
}

// backfillConcatenatedAddress rebuilds the derived address on students
// where it is empty even though address parts exist.
func backfillConcatenatedAddress(db *bun.DB) Migration {
	staleCount := func(ctx context.Context) (int, error) {
		return db.NewSelect().
			Model((*student.Student)(nil)).
			Where("COALESCE(concatenated_address, '') = ''").
			Where("COALESCE(street, '') <> '' OR COALESCE(area_village, '') <> '' OR COALESCE(city_tehsil, '') <> '' OR COALESCE(state, '') <> ''").
			Count(ctx)
	}

	return Migration{
		Name: "backfill_concatenated_address",
		Probe: func(ctx context.Context) (bool, error) {
			n, err := staleCount(ctx)
			return n == 0, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			before, err := staleCount(ctx)
			if err != nil {
				return nil, err
			}

			var stale []student.Student
			err = db.NewSelect().
				Model(&stale).
				Where("COALESCE(concatenated_address, '') = ''").
				Scan(ctx)
			if err != nil {
				return nil, err
			}

			for i := range stale {
				s := &stale[i]
				s.UpdateConcatenatedAddress()
				if s.ConcatenatedAddress == "" {
					continue
				}
				_, err = db.NewUpdate().
					Model(s).
					Column("concatenated_address").
					WherePK().
					Exec(ctx)
				if err != nil {
					return nil, err
				}
			}

			after, err := staleCount(ctx)
			if err != nil {
				return nil, err
			}
			return &Report{Before: before, After: after}, nil
		},
	}
}

// backfillDerivedTotals recomputes the stored totals on every ledger row
// that drifted from its components.
func backfillDerivedTotals(db *bun.DB, ledger fees.Service) Migration {
	driftCount := func(ctx context.Context) (int, error) {
		rows, err := ledger.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		drifted := 0
		for i := range rows {
			row := rows[i]
			b := row.Breakdown()
			if !row.TotalFee.Equal(b.TotalFee()) ||
				!row.TotalFeesPaid.Equal(b.TotalPaid()) ||
				!row.TotalAmountAfterRebate.Equal(b.AfterRebate()) ||
				!row.TotalAmountDue.Equal(b.AmountDue()) {
				drifted++
			}
		}
		return drifted, nil
	}

	return Migration{
		Name: "backfill_derived_totals",
		Probe: func(ctx context.Context) (bool, error) {
			n, err := driftCount(ctx)
			return n == 0, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			before, err := driftCount(ctx)
			if err != nil {
				return nil, err
			}

			rows, err := ledger.GetAll(ctx)
			if err != nil {
				return nil, err
			}
			for i := range rows {
				row := rows[i]
				b := row.Breakdown()
				if row.TotalFee.Equal(b.TotalFee()) &&
					row.TotalFeesPaid.Equal(b.TotalPaid()) &&
					row.TotalAmountAfterRebate.Equal(b.AfterRebate()) &&
					row.TotalAmountDue.Equal(b.AmountDue()) {
					continue
				}
				row.Recompute()
				_, err = db.NewUpdate().
					Model(&row).
					Column("total_fee", "total_fees_paid", "total_amount_after_rebate", "total_amount_due").
					WherePK().
					Exec(ctx)
				if err != nil {
					return nil, err
				}
			}

			after, err := driftCount(ctx)
			if err != nil {
				return nil, err
			}
			return &Report{Before: before, After: after}, nil
		},
	}
}

// syncCourseLinkage re-links unlinked ledger rows to their student's
// current course offering.
func syncCourseLinkage(db *bun.DB, students student.Repository, ledger fees.Service) Migration {
	unlinkedCount := func(ctx context.Context) (int, error) {
		return db.NewSelect().
			Model((*fees.CollegeFees)(nil)).
			Where("coursedetail_id IS NULL OR coursedetail_id = 0").
			Count(ctx)
	}

	return Migration{
		Name: "sync_course_linkage",
		Probe: func(ctx context.Context) (bool, error) {
			n, err := unlinkedCount(ctx)
			return n == 0, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			before, err := unlinkedCount(ctx)
			if err != nil {
				return nil, err
			}

			var studentIDs []int
			err = db.NewSelect().
				Model((*fees.CollegeFees)(nil)).
				Column("student_id").
				Where("coursedetail_id IS NULL OR coursedetail_id = 0").
				Scan(ctx, &studentIDs)
			if err != nil {
				return nil, err
			}

			for _, id := range studentIDs {
				stu, err := students.GetByID(ctx, id)
				if err != nil {
					continue
				}
				err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
					return ledger.SyncCourseLinkageTx(ctx, tx, stu)
				})
				if err != nil {
					return nil, err
				}
			}

			after, err := unlinkedCount(ctx)
			if err != nil {
				return nil, err
			}
			return &Report{Before: before, After: after}, nil
		},
	}
}

// syncTotalCourseFees refreshes the course-fee snapshot on linked rows.
// The underlying batch operation probes per row, so the migration's own
// probe just reports whether any row exists.
func syncTotalCourseFees(db *bun.DB, ledger fees.Service) Migration {
	return Migration{
		Name: "sync_total_course_fees",
		Probe: func(ctx context.Context) (bool, error) {
			n, err := db.NewSelect().
				Model((*fees.CollegeFees)(nil)).
				Where("coursedetail_id IS NOT NULL AND coursedetail_id <> 0").
				Count(ctx)
			return n == 0, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			result, err := ledger.SyncTotalCourseFees(ctx)
			if err != nil {
				return nil, err
			}
			// Before counts rows that were stale; After counts rows the
			// sync could not fix.
			return &Report{Before: result.Updated + result.Errored, After: result.Errored}, nil
		},
	}
}

// ensureLedgerRows opens a ledger row for every student missing one.
func ensureLedgerRows(students student.Repository, ledger fees.Service) Migration {
	missingCount := func(ctx context.Context) (int, error) {
		ids, err := students.IDsWithoutLedgerRow(ctx)
		return len(ids), err
	}

	return Migration{
		Name: "ensure_ledger_rows",
		Probe: func(ctx context.Context) (bool, error) {
			n, err := missingCount(ctx)
			return n == 0, err
		},
		Apply: func(ctx context.Context) (*Report, error) {
			before, err := missingCount(ctx)
			if err != nil {
				return nil, err
			}

			if _, err := ledger.EnsureAllStudentsHaveRows(ctx); err != nil {
				return nil, err
			}

			after, err := missingCount(ctx)
			if err != nil {
				return nil, err
			}
			return &Report{Before: before, After: after}, nil
		},
	}
}
