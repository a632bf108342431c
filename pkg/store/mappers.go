package store

import (
	"encoding/json"

	"github.com/glorpus-work/schoolyard/pkg/model"
)

func toDomainSite(rec siteModel) (*model.Site, error) {
	site := &model.Site{
		ID:   rec.SiteID,
		Name: rec.Name,
	}
	if rec.Settings != "" {
		if err := json.Unmarshal([]byte(rec.Settings), &site.Settings); err != nil {
			return nil, err
		}
	}
	return site, nil
}

func toDomainCourse(rec courseModel) *model.Course {
	return &model.Course{
		CourseID:  rec.CourseID,
		DomainID:  rec.DomainID,
		Title:     rec.Title,
		Published: rec.Published,
		Cost:      rec.Cost,
	}
}

func toDomainLesson(rec lessonModel) model.Lesson {
	return model.Lesson{
		LessonID: rec.LessonID,
		CourseID: rec.CourseID,
		DomainID: rec.DomainID,
		MediaID:  rec.MediaID,
	}
}

func toDomainUser(rec userModel, purchases []purchaseModel) (*model.User, error) {
	user := &model.User{
		UserID:   rec.UserID,
		DomainID: rec.DomainID,
		Email:    rec.Email,
	}
	if rec.Permissions != "" {
		if err := json.Unmarshal([]byte(rec.Permissions), &user.Permissions); err != nil {
			return nil, err
		}
	}
	for _, p := range purchases {
		user.Purchases = append(user.Purchases, model.Purchase{
			CourseID:   p.CourseID,
			Downloaded: p.Downloaded,
		})
	}
	return user, nil
}

func toDomainLink(rec linkModel) *model.DownloadLink {
	return &model.DownloadLink{
		Token:     rec.Token,
		CourseID:  rec.CourseID,
		UserID:    rec.UserID,
		DomainID:  rec.DomainID,
		ExpiresAt: rec.ExpiresAt,
		Consumed:  rec.Consumed,
	}
}

func toLinkModel(link *model.DownloadLink) linkModel {
	return linkModel{
		Token:     link.Token,
		CourseID:  link.CourseID,
		UserID:    link.UserID,
		DomainID:  link.DomainID,
		ExpiresAt: link.ExpiresAt,
		Consumed:  link.Consumed,
	}
}

func toOrderModel(order *model.Order) orderModel {
	return orderModel{
		OrderID:         order.OrderID,
		DomainID:        order.DomainID,
		CourseID:        order.CourseID,
		PurchasedBy:     order.PurchasedBy,
		PaymentMethod:   order.PaymentMethod,
		PaymentID:       order.PaymentID,
		Amount:          order.Amount,
		CurrencyISOCode: order.CurrencyISOCode,
		CreatedAt:       order.CreatedAt,
	}
}
