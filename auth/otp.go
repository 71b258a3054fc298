package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"rasoi/db"
	"rasoi/notify"
	"rasoi/rdx"
	"rasoi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	otpTTL           = 10 * time.Minute
	otpResendWindow  = time.Hour
	otpResendMax     = 5
	otpAttemptWindow = 10 * time.Minute
	otpAttemptMax    = 5
)

func sendRegistrationOTP(email string) error {
	otp := utils.GenerateRandomDigitString(6)
	if err := rdx.RdxSetWithExpiry("otp:email:"+email, otp, otpTTL); err != nil {
		return err
	}
	return notify.SendEmail(email, "Verify your email", "Your verification code is: "+otp)
}

type otpRequestInput struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// POST /api/auth/otp/request
//
// Resends are throttled per address through a windowed redis counter.
func RequestOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input otpRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	switch {
	case input.Email != "":
		n, err := rdx.RdxIncrWithWindow("otp:resend:"+input.Email, otpResendWindow)
		if err != nil {
			log.Printf("otp throttle error: %v", err)
		}
		if n > otpResendMax {
			utils.RespondError(w, utils.RateLimitError("Too many OTP requests, try again later"))
			return
		}
		if err := sendRegistrationOTP(input.Email); err != nil {
			log.Printf("otp email failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
	case input.Phone != "":
		n, err := rdx.RdxIncrWithWindow("otp:resend:"+input.Phone, otpResendWindow)
		if err != nil {
			log.Printf("otp throttle error: %v", err)
		}
		if n > otpResendMax {
			utils.RespondError(w, utils.RateLimitError("Too many OTP requests, try again later"))
			return
		}
		otp := utils.GenerateRandomDigitString(6)
		if err := rdx.RdxSetWithExpiry("otp:phone:"+input.Phone, otp, otpTTL); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store OTP")
			return
		}
		if err := notify.SendSMS(input.Phone, "Your verification code is: "+otp); err != nil {
			log.Printf("otp sms failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send OTP")
			return
		}
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "email or phone is required")
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "OTP sent"})
}

type otpVerifyInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// POST /api/auth/otp/verify
func VerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var input otpVerifyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.OTP == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email and otp are required")
		return
	}

	attempts, err := rdx.RdxIncrWithWindow("otp:attempts:"+input.Email, otpAttemptWindow)
	if err != nil {
		log.Printf("otp attempt counter error: %v", err)
	}
	if attempts > otpAttemptMax {
		utils.RespondError(w, utils.RateLimitError("Too many attempts, request a new OTP"))
		return
	}

	stored, err := rdx.RdxGet("otp:email:" + input.Email)
	if err != nil || stored != input.OTP {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"email": input.Email},
		bson.M{"$set": bson.M{"emailVerified": true}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify user")
		return
	}

	if err := rdx.RdxDel("otp:email:" + input.Email); err != nil {
		log.Printf("otp cleanup failed: %v", err)
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "Email verified"})
}
