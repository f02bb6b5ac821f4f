package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"elasticquest-be/internal/dto"
	"elasticquest-be/internal/model"
	"elasticquest-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ProgressRepositoryImpl struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) contract.ProgressRepository {
	return &ProgressRepositoryImpl{db: db}
}

func (r *ProgressRepositoryImpl) Get(ctx context.Context, userId string) (*dto.ExamProgress, error) {
	var m model.ExamProgress
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var progress dto.ExamProgress
	if err := json.Unmarshal(m.Data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepositoryImpl) Save(ctx context.Context, progress *dto.ExamProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	m := model.ExamProgress{
		UserId:          progress.UserId,
		Data:            data,
		TotalExperience: progress.TotalExperience,
	}
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *ProgressRepositoryImpl) Delete(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Delete(&model.ExamProgress{}, "user_id = ?", userId).Error
}
