package ledgerRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"styledesk/database"
	"styledesk/models"
	"styledesk/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedgerRepo implements LedgerRepository using MongoDB.
type MongoLedgerRepo struct {
	appointmentColl *mongo.Collection
	slotColl        *mongo.Collection
	customerColl    *mongo.Collection
}

// NewMongoLedgerRepo constructs a new instance of MongoLedgerRepo.
func NewMongoLedgerRepo() *MongoLedgerRepo {
	db := database.MongoClient.Database("styledesk")
	return &MongoLedgerRepo{
		appointmentColl: db.Collection("appointments"),
		slotColl:        db.Collection("slots"),
		customerColl:    db.Collection("customers"),
	}
}

func (repo *MongoLedgerRepo) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The unique partial index on (date, time) over active statuses makes
	// this a single atomic check-and-insert (see indexes.go).
	if _, err := repo.appointmentColl.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("error inserting appointment: %w", err)
	}
	return nil
}

func (repo *MongoLedgerRepo) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	if err := repo.appointmentColl.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (repo *MongoLedgerRepo) ListAppointments(ctx context.Context, f Filter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.FromDate != "" || f.ToDate != "" {
		dateRange := bson.M{}
		if f.FromDate != "" {
			dateRange["$gte"] = f.FromDate
		}
		if f.ToDate != "" {
			dateRange["$lte"] = f.ToDate
		}
		filter["date"] = dateRange
	}

	cursor, err := repo.appointmentColl.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	sortBySchedule(appts)
	return appts, nil
}

func (repo *MongoLedgerRepo) ActiveAt(ctx context.Context, date, timeOfDay, excludeID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   date,
		"time":   timeOfDay,
		"status": bson.M{"$in": models.ActiveStatuses},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	var appt models.Appointment
	if err := repo.appointmentColl.FindOne(ctx, filter).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error checking slot %s %s: %w", date, timeOfDay, err)
	}
	return &appt, nil
}

func (repo *MongoLedgerRepo) ActiveOn(ctx context.Context, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   date,
		"status": bson.M{"$in": models.ActiveStatuses},
	}
	cursor, err := repo.appointmentColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing active appointments for %s: %w", date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding active appointments: %w", err)
	}
	sortBySchedule(appts)
	return appts, nil
}

func (repo *MongoLedgerRepo) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.appointmentColl.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, fmt.Errorf("error updating status of appointment %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoLedgerRepo) UpdateSchedule(ctx context.Context, id, date, timeOfDay, notes string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"date": date, "time": timeOfDay}
	if notes != "" {
		update["notes"] = notes
	}
	res, err := repo.appointmentColl.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": update})
	if err != nil {
		return false, fmt.Errorf("error rescheduling appointment %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoLedgerRepo) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.appointmentColl.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"reminder_sent": true}})
	if err != nil {
		return false, fmt.Errorf("error marking reminder for appointment %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (repo *MongoLedgerRepo) PendingReminders(ctx context.Context) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":        bson.M{"$in": models.ActiveStatuses},
		"reminder_sent": false,
	}
	cursor, err := repo.appointmentColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing pending reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding pending reminders: %w", err)
	}
	sortBySchedule(appts)
	return appts, nil
}

func (repo *MongoLedgerRepo) EnsureSlots(ctx context.Context, date string, times []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if len(times) == 0 {
		return nil
	}
	var ops []mongo.WriteModel
	for _, t := range times {
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"date": date, "time": t}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"date": date, "time": t, "available": true}}).
			SetUpsert(true))
	}
	if _, err := repo.slotColl.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("error materializing slots for %s: %w", date, err)
	}
	return nil
}

func (repo *MongoLedgerRepo) SetSlotAvailable(ctx context.Context, date, timeOfDay string, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.slotColl.UpdateOne(ctx,
		bson.M{"date": date, "time": timeOfDay},
		bson.M{"$set": bson.M{"available": available}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("error updating slot %s %s: %w", date, timeOfDay, err)
	}
	return nil
}

func (repo *MongoLedgerRepo) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":         bson.M{"last_active": customer.LastActive},
		"$setOnInsert": bson.M{"user_id": customer.UserID, "created_at": customer.CreatedAt},
	}
	if customer.Name != "" {
		update["$set"].(bson.M)["name"] = customer.Name
	}
	_, err := repo.customerColl.UpdateOne(ctx, bson.M{"user_id": customer.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error upserting customer %s: %w", customer.UserID, err)
	}
	return nil
}

func (repo *MongoLedgerRepo) GetCustomer(ctx context.Context, userID string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	if err := repo.customerColl.FindOne(ctx, bson.M{"user_id": userID}).Decode(&customer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching customer %s: %w", userID, err)
	}
	return &customer, nil
}

// sortBySchedule orders appointments by date, then by parsed time of day.
// Clock labels do not sort lexically ("10:00 AM" < "9:00 AM"), so the sort
// happens here rather than in the query.
func sortBySchedule(appts []models.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		ti, _ := utils.ParseClock(appts[i].Time)
		tj, _ := utils.ParseClock(appts[j].Time)
		return ti < tj
	})
}
