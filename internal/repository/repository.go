package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoudBH/gestion-etudiant/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithTx runs fn in a single transaction, rolling back when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) CreateUser(ctx context.Context, user model.User) (int64, error) {
	var id int64
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (firstname, lastname, email, password, class)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Class)
	err := row.Scan(&id)
	return id, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, firstname, lastname, email, password, class, profile_photo, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, firstname, lastname, email, password, class, profile_photo, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return scanUser(row)
}

func (s *Store) GetUserClass(ctx context.Context, userID int64) (string, error) {
	var class string
	err := s.pool.QueryRow(ctx, `SELECT class FROM users WHERE id = $1`, userID).Scan(&class)
	return class, err
}

// UpdateProfile reports false when no row matched userID.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, update model.ProfileUpdate) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET firstname = $1, lastname = $2, email = $3, password = $4
		WHERE id = $5
	`, update.FirstName, update.LastName, update.Email, update.PasswordHash, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ChangePassword locks the user row, hands the stored hash to verify and
// writes newHash only when verify returns nil. A missing user yields
// pgx.ErrNoRows; any verify error is returned unchanged.
func (s *Store) ChangePassword(ctx context.Context, userID int64, verify func(storedHash string) error, newHash string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var stored string
		row := tx.QueryRow(ctx, `SELECT password FROM users WHERE id = $1 FOR UPDATE`, userID)
		if err := row.Scan(&stored); err != nil {
			return err
		}
		if err := verify(stored); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, newHash, userID)
		return err
	})
}

// UpdateProfilePhoto reports false when no row matched userID.
func (s *Store) UpdateProfilePhoto(ctx context.Context, userID int64, photoPath string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET profile_photo = $1 WHERE id = $2`, photoPath, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListNotesByUser(ctx context.Context, userID int64) ([]model.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, matiere, note, coefficient, created_at
		FROM note
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Matiere, &n.Note, &n.Coefficient, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, note model.Note) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO note (user_id, matiere, note, coefficient)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, note.UserID, note.Matiere, note.Note, note.Coefficient).Scan(&id)
	return id, err
}

func (s *Store) CreateCourse(ctx context.Context, course model.Course) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO cours (matiere, classe, pdf_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, course.Matiere, course.Classe, course.PDFPath).Scan(&id)
	return id, err
}

func (s *Store) ListCoursesByClass(ctx context.Context, class string) ([]model.Course, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, matiere, classe, pdf_path, created_at
		FROM cours
		WHERE classe = $1
		ORDER BY created_at DESC, id DESC
	`, class)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Matiere, &c.Classe, &c.PDFPath, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *Store) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, email, mobile_number FROM admin ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.Name, &c.Email, &c.MobileNumber); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *Store) CreateContact(ctx context.Context, contact model.Contact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin (name, email, mobile_number)
		VALUES ($1, $2, $3)
	`, contact.Name, contact.Email, contact.MobileNumber)
	return err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Class,
		&user.ProfilePhoto,
		&user.CreatedAt,
	)
	return user, err
}
