package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructorRepositoryListAll(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInstructorRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, specializations, experience_years, created_at, updated_at FROM instructors ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specializations", "experience_years", "created_at", "updated_at"}).
			AddRow("I1", "Kim", "{\"BS Basic\",Welding}", 4.5, now, now).
			AddRow("I2", "Lee", "{}", nil, now, now))

	instructors, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, instructors, 2)
	assert.Equal(t, []string{"BS Basic", "Welding"}, []string(instructors[0].Specializations))
	require.NotNil(t, instructors[0].ExperienceYears)
	assert.InDelta(t, 4.5, *instructors[0].ExperienceYears, 1e-9)
	assert.Nil(t, instructors[1].ExperienceYears)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryListAll(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewClassroomRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms ORDER BY name ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "specializations", "capacity", "created_at", "updated_at"}).
			AddRow("R1", "Lab A", "{}", 24, now, now))

	rooms, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.NotNil(t, rooms[0].Capacity)
	assert.Equal(t, 24, *rooms[0].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM subjects WHERE id = $1")).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("sub-1", "BS Basic Advanced"))

	subject, err := repo.FindByID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "BS Basic Advanced", subject.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
