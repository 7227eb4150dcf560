package repository

import (
	"context"
	"database/sql"
	"errors"

	"dails-report/internal/domain"
)

type DeclarationRepository struct {
	db *sql.DB
}

func NewDeclarationRepository(db *sql.DB) *DeclarationRepository {
	return &DeclarationRepository{
		db: db,
	}
}

// FindByID loads a declaration joined with its owner's profile.
func (r *DeclarationRepository) FindByID(ctx context.Context, id int64) (domain.Declaration, error) {
	query := `
		SELECT
			d.id,
			d.user_id,
			d.declaration_type,
			d.declaration_date,
			d.status,
			d.correction_message,
			d.marital_status,
			d.submitted_at,
			d.created_at,
			d.updated_at,
			d.period_start_date,
			d.period_end_date,
			d.biennial_income,
			d.assets,
			d.liabilities,
			d.witness_name,
			d.witness_phone,
			d.witness_address,
			u.first_name,
			u.other_names,
			u.surname,
			u.email,
			u.national_id,
			u.payroll_number,
			u.department,
			u.designation,
			u.marital_status AS user_marital_status,
			u.birthdate,
			u.place_of_birth,
			u.postal_address,
			u.physical_address,
			u.nature_of_employment
		FROM declarations d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`

	var d domain.Declaration
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.UserID,
		&d.DeclarationType,
		&d.DeclarationDate,
		&d.Status,
		&d.CorrectionMessage,
		&d.MaritalStatus,
		&d.SubmittedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.PeriodStart,
		&d.PeriodEnd,
		&d.BiennialIncome,
		&d.Assets,
		&d.Liabilities,
		&d.WitnessName,
		&d.WitnessPhone,
		&d.WitnessAddress,
		&d.FirstName,
		&d.OtherNames,
		&d.Surname,
		&d.Email,
		&d.NationalID,
		&d.PayrollNumber,
		&d.Department,
		&d.Designation,
		&d.UserMaritalStatus,
		&d.Birthdate,
		&d.PlaceOfBirth,
		&d.PostalAddress,
		&d.PhysicalAddress,
		&d.NatureOfEmployment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Declaration{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Declaration{}, err
	}
	return d, nil
}

func (r *DeclarationRepository) ListSpouses(ctx context.Context, declarationID int64) ([]domain.HouseholdMember, error) {
	return r.listMembers(ctx, "spouses", domain.MemberSpouse, declarationID)
}

func (r *DeclarationRepository) ListChildren(ctx context.Context, declarationID int64) ([]domain.HouseholdMember, error) {
	return r.listMembers(ctx, "children", domain.MemberChild, declarationID)
}

// table is one of the fixed member tables, never user input.
func (r *DeclarationRepository) listMembers(ctx context.Context, table string, kind domain.MemberKind, declarationID int64) ([]domain.HouseholdMember, error) {
	query := `
		SELECT
			first_name,
			other_names,
			surname,
			full_name,
			biennial_income,
			assets,
			liabilities
		FROM ` + table + `
		WHERE declaration_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, declarationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HouseholdMember

	for rows.Next() {
		m := domain.HouseholdMember{Kind: kind}

		if err := rows.Scan(
			&m.FirstName,
			&m.OtherNames,
			&m.Surname,
			&m.FullName,
			&m.BiennialIncome,
			&m.Assets,
			&m.Liabilities,
		); err != nil {
			return nil, err
		}

		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListLegacy returns the side-table declarations without their items, oldest first.
func (r *DeclarationRepository) ListLegacy(ctx context.Context, declarationID int64) ([]domain.LegacyDeclaration, error) {
	query := `
		SELECT
			fd.id,
			fd.declaration_id,
			COALESCE(fd.member_type, ''),
			fd.member_name,
			fd.declaration_date,
			fd.period_start_date,
			fd.period_end_date,
			fd.other_financial_info,
			fd.created_at
		FROM financial_declarations fd
		WHERE fd.declaration_id = $1
		ORDER BY fd.created_at, fd.id
	`

	rows, err := r.db.QueryContext(ctx, query, declarationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LegacyDeclaration

	for rows.Next() {
		var fd domain.LegacyDeclaration

		if err := rows.Scan(
			&fd.ID,
			&fd.DeclarationID,
			&fd.MemberType,
			&fd.MemberName,
			&fd.DeclarationDate,
			&fd.PeriodStart,
			&fd.PeriodEnd,
			&fd.Note,
			&fd.CreatedAt,
		); err != nil {
			return nil, err
		}

		result = append(result, fd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListLegacyItems returns every side-table item belonging to the declaration.
func (r *DeclarationRepository) ListLegacyItems(ctx context.Context, declarationID int64) ([]domain.LegacyItem, error) {
	query := `
		SELECT
			fi.id,
			fi.financial_declaration_id,
			COALESCE(fi.item_type, ''),
			fi.description,
			fi.value
		FROM financial_items fi
		JOIN financial_declarations fd ON fd.id = fi.financial_declaration_id
		WHERE fd.declaration_id = $1
		ORDER BY fi.id
	`

	rows, err := r.db.QueryContext(ctx, query, declarationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LegacyItem

	for rows.Next() {
		var it domain.LegacyItem

		if err := rows.Scan(
			&it.ID,
			&it.FinancialDeclarationID,
			&it.ItemType,
			&it.Description,
			&it.Value,
		); err != nil {
			return nil, err
		}

		result = append(result, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
