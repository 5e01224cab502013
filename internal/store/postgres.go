// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svintus/svintus/internal/models"
)

const uniqueViolation = "23505"

// Postgres implements Store on a pgx connection pool. Every multi-statement
// method runs inside one transaction.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool and pings it before handing back the store.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) CreateRoom(ctx context.Context, room *models.Room, admin *models.Member) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO rooms (token, name, status, heap)
		VALUES ($1, $2, $3, $4)
		RETURNING id
		`
		if err := tx.QueryRow(ctx, q, room.Token, room.Name, room.Status, room.Heap).Scan(&room.ID); err != nil {
			return err
		}
		admin.RoomID = room.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO members (id, username, role, hand, room_id) VALUES ($1, $2, $3, $4, $5)`,
			admin.ID, admin.Username, admin.Role, admin.Hand, admin.RoomID,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (s *Postgres) RoomByName(ctx context.Context, name string) (*models.Room, error) {
	return s.fetchRoom(ctx, `SELECT id, token, name, status, heap FROM rooms WHERE name = $1`, name)
}

func (s *Postgres) RoomByID(ctx context.Context, id int64) (*models.Room, error) {
	return s.fetchRoom(ctx, `SELECT id, token, name, status, heap FROM rooms WHERE id = $1`, id)
}

// fetchRoom reads the room row and its membership inside one transaction so
// the pair is a consistent snapshot.
func (s *Postgres) fetchRoom(ctx context.Context, q string, arg any) (*models.Room, error) {
	var r models.Room
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, q, arg).Scan(&r.ID, &r.Token, &r.Name, &r.Status, &r.Heap)
		if err == pgx.ErrNoRows {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		r.Members, err = roomMembers(ctx, tx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func roomMembers(ctx context.Context, tx pgx.Tx, roomID int64) ([]*models.Member, error) {
	q := `
	SELECT id, username, role, hand, room_id
	FROM members
	WHERE room_id = $1
	ORDER BY seq
	`
	rows, err := tx.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Role, &m.Hand, &m.RoomID); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (s *Postgres) MemberWithRoom(ctx context.Context, memberID uuid.UUID) (*models.Member, *models.Room, error) {
	q := `
	SELECT m.id, m.username, m.role, m.hand, m.room_id,
	       r.id, r.token, r.name, r.status, r.heap
	FROM members m
	JOIN rooms r ON r.id = m.room_id
	WHERE m.id = $1
	`
	var m models.Member
	var r models.Room
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, q, memberID).Scan(
			&m.ID, &m.Username, &m.Role, &m.Hand, &m.RoomID,
			&r.ID, &r.Token, &r.Name, &r.Status, &r.Heap,
		)
		if err == pgx.ErrNoRows {
			return ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		r.Members, err = roomMembers(ctx, tx, r.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &m, &r, nil
}

func (s *Postgres) AddMember(ctx context.Context, roomID int64, member *models.Member) error {
	member.RoomID = roomID
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO members (id, username, role, hand, room_id) VALUES ($1, $2, $3, $4, $5)`,
			member.ID, member.Username, member.Role, member.Hand, member.RoomID,
		)
		return err
	})
}

func (s *Postgres) StartRoom(ctx context.Context, roomID int64, heap []string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE rooms SET status = $1, heap = $2 WHERE id = $3`,
		models.RoomStarted, heap, roomID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *Postgres) DrawFromHeap(ctx context.Context, roomID int64, memberID uuid.UUID, count int) ([]string, error) {
	var drawn []string
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var heap []string
		err := tx.QueryRow(ctx, `SELECT heap FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&heap)
		if err == pgx.ErrNoRows {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if count < 0 {
			count = 0
		}
		if count > len(heap) {
			count = len(heap)
		}
		drawn = heap[:count]

		if _, err := tx.Exec(ctx, `UPDATE rooms SET heap = $1 WHERE id = $2`, heap[count:], roomID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE members SET hand = hand || $1 WHERE id = $2`, drawn, memberID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drawn, nil
}

func (s *Postgres) RemoveMember(ctx context.Context, memberID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
		return err
	})
}

// DeleteRoom removes the members first, then the room, in one transaction.
// The cascade is deliberate store logic rather than a schema trigger.
func (s *Postgres) DeleteRoom(ctx context.Context, roomID int64) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM members WHERE room_id = $1`, roomID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
		return err
	})
}
