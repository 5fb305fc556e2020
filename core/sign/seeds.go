package sign

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

var (
	defaultCategories = []string{
		"현수막", "배너", "실사출력", "포스터", "롤업배너", "패브릭배너", "채널간판", "아크릴간판",
		"LED간판", "입간판", "현판", "포맥스", "실크스크린", "차량래핑", "명함/스티커",
	}

	defaultFinishingOptions = []struct {
		name string
		unit pricing.UnitType
	}{
		{"그로멧(아일렛)", pricing.Each},
		{"봉제/미싱", pricing.Meter},
		{"코팅", pricing.SquareMeter},
		{"양면인쇄", pricing.SquareMeter},
		{"봉삽입", pricing.Each},
		{"LED모듈 설치", pricing.Each},
		{"시공/설치비", pricing.Each},
		{"디자인비", pricing.Each},
	}
)

// SeedDefaults gives a user the default sign categories and finishing options, unless they already have some.
// It has the user.RegisterHook signature.
func (svc *Service) SeedDefaults(ctx context.Context, exec core.DBExecutor, userID int64) error {
	cnt, err := svc.repo.CountCategories(ctx, userID, exec)
	if err != nil {
		return errors.Wrap(err, "counting categories")
	}
	if cnt == 0 {
		for i, name := range defaultCategories {
			if _, err := svc.repo.CreateCategory(ctx, Category{UserID: userID, Name: name, SortOrder: i}, exec); err != nil {
				return errors.Wrap(err, "seeding categories")
			}
		}
	}

	if cnt, err = svc.repo.CountFinishingOptions(ctx, userID, exec); err != nil {
		return errors.Wrap(err, "counting finishing options")
	}
	if cnt == 0 {
		for i, f := range defaultFinishingOptions {
			opt := FinishingOption{
				UserID:    userID,
				Name:      f.name,
				UnitType:  f.unit,
				UnitPrice: decimal.Zero,
				IsActive:  true,
				SortOrder: i,
			}
			if _, err := svc.repo.CreateFinishingOption(ctx, opt, exec); err != nil {
				return errors.Wrap(err, "seeding finishing options")
			}
		}
	}
	return nil
}
