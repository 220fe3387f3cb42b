package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iphonefly/realtime-api/internal/model"
)

// GormIphoneStore implements IphoneStore on a GORM database handle.
type GormIphoneStore struct {
	DB *gorm.DB
}

// NewGormIphoneStore returns an IphoneStore backed by db.
func NewGormIphoneStore(db *gorm.DB) *GormIphoneStore {
	return &GormIphoneStore{DB: db}
}

func (s *GormIphoneStore) Create(iphone *model.Iphone) error {
	if err := s.DB.Create(iphone).Error; err != nil {
		return fmt.Errorf("failed to create iphone: %w", err)
	}
	return nil
}

func (s *GormIphoneStore) FindByID(id uint) (*model.Iphone, error) {
	var iphone model.Iphone
	err := s.DB.First(&iphone, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find iphone %d: %w", id, err)
	}
	return &iphone, nil
}

func (s *GormIphoneStore) Update(id uint, fields map[string]any) error {
	res := s.DB.Model(&model.Iphone{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update iphone %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL counts changed rows, not matched rows: an update that
		// resubmits the current values also reports zero. Only a missing
		// row is an error.
		if _, err := s.FindByID(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *GormIphoneStore) Delete(id uint) error {
	res := s.DB.Delete(&model.Iphone{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete iphone %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormIphoneStore) ListByID() ([]model.Iphone, error) {
	var iphones []model.Iphone
	if err := s.DB.Order("id ASC").Find(&iphones).Error; err != nil {
		return nil, fmt.Errorf("failed to list iphones: %w", err)
	}
	if iphones == nil {
		iphones = []model.Iphone{}
	}
	return iphones, nil
}

// GormMessageStore implements MessageStore on a GORM database handle.
type GormMessageStore struct {
	DB *gorm.DB
}

// NewGormMessageStore returns a MessageStore backed by db.
func NewGormMessageStore(db *gorm.DB) *GormMessageStore {
	return &GormMessageStore{DB: db}
}

func (s *GormMessageStore) Create(msg *model.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *GormMessageStore) Recent(limit int) ([]model.Message, error) {
	var msgs []model.Message
	if err := s.DB.Order("timestamp DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent messages: %w", err)
	}
	return msgs, nil
}

func (s *GormMessageStore) Page(limit, offset int) ([]model.Message, int64, error) {
	var total int64
	if err := s.DB.Model(&model.Message{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var msgs []model.Message
	err := s.DB.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&msgs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page messages: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, total, nil
}

func (s *GormMessageStore) BySender(sender string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := s.DB.Where("sender = ?", sender).
		Order("timestamp DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for %q: %w", sender, err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

func (s *GormMessageStore) CountByKind() (total, user, system int64, err error) {
	if err = s.DB.Model(&model.Message{}).Count(&total).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	if err = s.DB.Model(&model.Message{}).
		Where("kind = ?", model.MessageKindUser).
		Count(&user).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	if err = s.DB.Model(&model.Message{}).
		Where("kind = ?", model.MessageKindSystem).
		Count(&system).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count system messages: %w", err)
	}
	return total, user, system, nil
}

func (s *GormMessageStore) TopSenders(n int) ([]model.SenderCount, error) {
	var rows []model.SenderCount
	err := s.DB.Model(&model.Message{}).
		Select("sender, COUNT(sender) AS message_count").
		Where("kind = ?", model.MessageKindUser).
		Group("sender").
		Order("message_count DESC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank senders: %w", err)
	}
	if rows == nil {
		rows = []model.SenderCount{}
	}
	return rows, nil
}

func (s *GormMessageStore) DeleteByID(id string) error {
	res := s.DB.Delete(&model.Message{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
