package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genDate() gopter.Gen {
	return gen.Int64Range(0, 4102444800).Map(func(sec int64) string {
		return time.Unix(sec, 0).UTC().Format(time.RFC3339)
	})
}

func genAvatar() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Avatar{}), map[string]gopter.Gen{
		"Src":  gen.AlphaString(),
		"Alt":  gen.AlphaString(),
		"Text": gen.AlphaString(),
	})
}

func genUser() gopter.Gen {
	return gen.Struct(reflect.TypeOf(User{}), map[string]gopter.Gen{
		"ID":       gen.Int64(),
		"Name":     gen.AlphaString(),
		"Email":    gen.AlphaString(),
		"Avatar":   gen.PtrOf(genAvatar()),
		"Status":   gen.OneConstOf(UserStatusSubscribed, UserStatusUnsubscribed, UserStatusBounced),
		"Location": gen.AlphaString(),
	})
}

func genTest() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Test{}), map[string]gopter.Gen{
		"Input":           gen.AlphaString(),
		"ExpeectedOutput": gen.AlphaString(),
	})
}

func genMail() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Mail{}), map[string]gopter.Gen{
		"ID":      gen.Int64(),
		"Unread":  gen.PtrOf(gen.Bool()),
		"From":    genUser(),
		"Subject": gen.AlphaString(),
		"Body":    gen.AlphaString(),
		"Date":    genDate(),
	})
}

func genNotification() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Notification{}), map[string]gopter.Gen{
		"ID":     gen.Int64(),
		"Unread": gen.PtrOf(gen.Bool()),
		"Sender": genUser(),
		"Body":   gen.AlphaString(),
		"Date":   genDate(),
		"Tests":  gen.SliceOf(genTest()),
	})
}

func genMember() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Member{}), map[string]gopter.Gen{
		"Name":     gen.AlphaString(),
		"Username": gen.Identifier(),
		"Role":     gen.OneConstOf(RoleMember, RoleOwner),
		"Avatar":   genAvatar(),
	})
}

func genQuestion() gopter.Gen {
	return gen.Struct(reflect.TypeOf(Question{}), map[string]gopter.Gen{
		"Title":       gen.AlphaString(),
		"Description": gen.AlphaString(),
		"Level":       gen.IntRange(0, 10),
		"ID":          gen.Identifier(),
		"InputTypes":  gen.AlphaString(),
		"Outputtype":  gen.AlphaString(),
	})
}

// roundTrips encodes v, decodes into a fresh value of the same type and compares.
func roundTrips(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	out := reflect.New(reflect.TypeOf(v))
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return false
	}
	return reflect.DeepEqual(v, out.Elem().Interface())
}

func TestContractRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("user survives encode/decode", prop.ForAll(
		func(u User) bool { return roundTrips(u) },
		genUser(),
	))
	properties.Property("mail survives encode/decode", prop.ForAll(
		func(m Mail) bool { return roundTrips(m) },
		genMail(),
	))
	properties.Property("member survives encode/decode", prop.ForAll(
		func(m Member) bool { return roundTrips(m) },
		genMember(),
	))
	properties.Property("question survives encode/decode", prop.ForAll(
		func(q Question) bool { return roundTrips(q) },
		genQuestion(),
	))
	properties.Property("test survives encode/decode", prop.ForAll(
		func(tc Test) bool { return roundTrips(tc) },
		genTest(),
	))
	properties.Property("notification survives encode/decode", prop.ForAll(
		func(n Notification) bool {
			data, err := json.Marshal(n)
			if err != nil {
				return false
			}
			var got Notification
			if err := json.Unmarshal(data, &got); err != nil {
				return false
			}
			if len(n.Tests) == 0 && len(got.Tests) == 0 {
				n.Tests, got.Tests = nil, nil
			}
			return reflect.DeepEqual(n, got)
		},
		genNotification(),
	))
	properties.Property("range survives encode/decode", prop.ForAll(
		func(start, span int64) bool {
			r := Range{Start: time.Unix(start, 0).UTC(), End: time.Unix(start+span, 0).UTC()}
			data, err := json.Marshal(r)
			if err != nil {
				return false
			}
			var got Range
			if err := json.Unmarshal(data, &got); err != nil {
				return false
			}
			return got.Start.Equal(r.Start) && got.End.Equal(r.End)
		},
		gen.Int64Range(0, 4000000000),
		gen.Int64Range(0, 100000000),
	))

	properties.TestingRun(t)
}

func TestClosedEnumerations(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unknown user statuses are rejected", prop.ForAll(
		func(s string) bool {
			_, err := ParseUserStatus(s)
			return err != nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return !UserStatus(s).IsValid() }),
	))
	properties.Property("unknown member roles are rejected", prop.ForAll(
		func(s string) bool {
			_, err := ParseMemberRole(s)
			return err != nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return !MemberRole(s).IsValid() }),
	))
	properties.Property("unknown periods are rejected", prop.ForAll(
		func(s string) bool {
			_, err := ParsePeriod(s)
			return err != nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return !Period(s).IsValid() }),
	))

	properties.TestingRun(t)
}

func TestBucketsCoverRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	periods := gen.OneConstOf(PeriodDaily, PeriodWeekly, PeriodMonthly)
	properties.Property("every instant in the range falls in a returned bucket", prop.ForAll(
		func(start, span, offset int64, p Period) bool {
			r := Range{Start: time.Unix(start, 0).UTC(), End: time.Unix(start+span, 0).UTC()}
			buckets, err := Buckets(r, p)
			if err != nil || len(buckets) == 0 {
				return false
			}
			for i := 1; i < len(buckets); i++ {
				if !buckets[i-1].Before(buckets[i]) {
					return false
				}
			}
			ts := time.Unix(start+offset%(span+1), 0)
			b := BucketFor(ts, p)
			for _, candidate := range buckets {
				if candidate.Equal(b) {
					return true
				}
			}
			return false
		},
		gen.Int64Range(0, 4000000000),
		gen.Int64Range(0, 200*24*3600),
		gen.Int64Range(0, 1<<40),
		periods,
	))

	properties.TestingRun(t)
}
